package search

import (
	"strings"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

const (
	// WinScore is the value of a worker standing on the winning level
	WinScore = 10000
	// Infinity bounds every reachable evaluation
	Infinity = 100000

	levelWeight     = 1000
	neighborWeight  = 100
	stepUpMobility  = 10
	mobility        = 1
	climbOneBonus   = 10
	sameLevelBonus  = 5
	lowerLevelBonus = 1
)

// Evaluator scores a match from player's point of view. Higher is better.
type Evaluator func(m *game.Match, player string) int

// position is a value copy of the island used for scoring
type position struct {
	levels   [core.CellCount]int
	occupied [core.CellCount]bool
	workers  []placedWorker
}

type placedWorker struct {
	id core.WorkerID
	at core.Coordinate
}

func newPosition(island *core.Island) *position {
	p := &position{}
	for i, cell := range island.Cells() {
		p.levels[i] = cell.Level
		if cell.Occupant != nil {
			p.occupied[i] = true
			p.workers = append(p.workers, placedWorker{id: *cell.Occupant, at: core.CoordinateFromIndex(i)})
		}
	}
	return p
}

func (p *position) level(c core.Coordinate) int { return p.levels[c.Index()] }

// apply plays cmd on the copy. The build is skipped when the worker lands
// on the winning level.
func (p *position) apply(cmd core.MoveCommand) {
	for i, w := range p.workers {
		if !w.id.Matches(cmd.PlayerName, cmd.WorkerNumber) {
			continue
		}
		p.occupied[w.at.Index()] = false
		p.occupied[cmd.MoveTo.Index()] = true
		p.workers[i].at = cmd.MoveTo
	}
	if p.level(cmd.MoveTo) != core.WinningLevel && p.levels[cmd.BuildAt.Index()] < core.MaxLevel {
		p.levels[cmd.BuildAt.Index()]++
	}
}

// scoreWorker values one worker: its height, the height of the lands around
// it (domes count against it) and how many of them it can step onto.
func (p *position) scoreWorker(at core.Coordinate) int {
	own := p.level(at)
	if own == core.WinningLevel {
		return WinScore
	}
	value := levelWeight * own
	for _, n := range at.Neighbors() {
		lvl := p.level(n)
		if lvl == core.MaxLevel {
			value -= neighborWeight
			continue
		}
		value += neighborWeight * lvl
		if p.occupied[n.Index()] || lvl > own+1 {
			continue
		}
		if lvl > own {
			value += stepUpMobility
		} else {
			value += mobility
		}
	}
	return value
}

// scoreLanding values a worker that just moved to at, rewarding lands next
// to it that it could climb onto next turn.
func (p *position) scoreLanding(at core.Coordinate) int {
	own := p.level(at)
	if own == core.WinningLevel {
		return WinScore
	}
	value := levelWeight * own
	for _, n := range at.Neighbors() {
		lvl := p.level(n)
		if lvl == core.MaxLevel {
			value -= neighborWeight
		} else {
			value += neighborWeight * lvl
		}
		switch {
		case lvl == own+1:
			value += climbOneBonus
		case lvl == own:
			value += sameLevelBonus
		case lvl < own:
			value += lowerLevelBonus
		}
	}
	return value
}

func sign(owner, player string) int {
	if strings.EqualFold(owner, player) {
		return 1
	}
	return -1
}

// Evaluate is the default static evaluation. A worker on the winning level
// decides the game outright: ±WinScore.
func Evaluate(m *game.Match, player string) int {
	p := newPosition(m.Island())
	for _, w := range p.workers {
		if p.level(w.at) == core.WinningLevel {
			return sign(w.id.Player, player) * WinScore
		}
	}
	value := 0
	for _, w := range p.workers {
		value += sign(w.id.Player, player) * p.scoreWorker(w.at)
	}
	return value
}

// AssessCommand scores cmd one ply deep for the player issuing it, on a copy
// of the board with the move and build applied. The match is not touched.
func AssessCommand(m *game.Match, cmd core.MoveCommand) int {
	p := newPosition(m.Island())
	p.apply(cmd)

	if p.level(cmd.MoveTo) == core.WinningLevel {
		return WinScore
	}
	value := 0
	for _, w := range p.workers {
		s := sign(w.id.Player, cmd.PlayerName)
		if w.id.Matches(cmd.PlayerName, cmd.WorkerNumber) {
			value += s * p.scoreLanding(w.at)
			continue
		}
		value += s * p.scoreWorker(w.at)
	}
	return value
}
