package game

import (
	"strings"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// Player is a registered participant with exactly two workers
type Player struct {
	name    string
	workers [core.WorkersPerPlayer]*core.Worker
}

// NewPlayer creates a player and its two unplaced workers.
// An empty name is a programming error and panics.
func NewPlayer(name string) *Player {
	if name == "" {
		panic("game: player name must not be empty")
	}
	p := &Player{name: name}
	for i := range p.workers {
		p.workers[i] = core.NewWorker(name, i+1)
	}
	return p
}

func (p *Player) Name() string { return p.name }

// Is compares names case-insensitively
func (p *Player) Is(name string) bool {
	return strings.EqualFold(p.name, name)
}

// Worker returns worker 1 or 2, or nil for any other number
func (p *Player) Worker(number int) *core.Worker {
	if number < 1 || number > core.WorkersPerPlayer {
		return nil
	}
	return p.workers[number-1]
}

// Workers returns both workers in number order
func (p *Player) Workers() []*core.Worker {
	return []*core.Worker{p.workers[0], p.workers[1]}
}

// PlacedWorkers counts the player's workers on the island
func (p *Player) PlacedWorkers() int {
	n := 0
	for _, w := range p.workers {
		if w.IsPlaced() {
			n++
		}
	}
	return n
}
