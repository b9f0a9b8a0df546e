package rules

import (
	"sort"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// LegalMoveCalculator enumerates the turns a player can legally take.
// It only returns commands that a match would accept.
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// Destinations returns the lands w can step onto, highest level first.
func (lmc *LegalMoveCalculator) Destinations(island *core.Island, w *core.Worker) []core.Coordinate {
	pos, placed := w.Position()
	if !placed {
		return nil
	}
	var out []core.Coordinate
	for _, n := range pos.Neighbors() {
		if w.CanMoveTo(island, n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return island.Land(out[i]).Level() > island.Land(out[j]).Level()
	})
	return out
}

// CanBuildAfterMove reports whether w, once moved to dest, may build at at.
// The land w leaves counts as vacated.
func (lmc *LegalMoveCalculator) CanBuildAfterMove(island *core.Island, w *core.Worker, dest, at core.Coordinate) bool {
	if !at.IsValid() || at.Equal(dest) || !dest.IsAdjacentTo(at) {
		return false
	}
	target := island.Land(at)
	if target.MaxLevelReached() {
		return false
	}
	return !target.HasWorker() || target.Worker().Is(w)
}

// BuildTargets returns every land w could build on after moving to dest
func (lmc *LegalMoveCalculator) BuildTargets(island *core.Island, w *core.Worker, dest core.Coordinate) []core.Coordinate {
	var out []core.Coordinate
	for _, n := range dest.Neighbors() {
		if lmc.CanBuildAfterMove(island, w, dest, n) {
			out = append(out, n)
		}
	}
	return out
}

// CommandsForWorker returns one command per legal (destination, build) pair
func (lmc *LegalMoveCalculator) CommandsForWorker(island *core.Island, w *core.Worker) []core.MoveCommand {
	var out []core.MoveCommand
	for _, dest := range lmc.Destinations(island, w) {
		for _, build := range lmc.BuildTargets(island, w, dest) {
			out = append(out, core.NewMoveCommand(w.Player(), w.Number(), dest, build))
		}
	}
	return out
}

// CommandsFor returns every legal command for player, worker 1 first
func (lmc *LegalMoveCalculator) CommandsFor(island *core.Island, player string) []core.MoveCommand {
	var out []core.MoveCommand
	for number := 1; number <= core.WorkersPerPlayer; number++ {
		w := island.GetWorker(player, number)
		if w == nil {
			continue
		}
		out = append(out, lmc.CommandsForWorker(island, w)...)
	}
	return out
}

// HasLegalMove reports whether player has at least one legal command
func (lmc *LegalMoveCalculator) HasLegalMove(island *core.Island, player string) bool {
	for number := 1; number <= core.WorkersPerPlayer; number++ {
		w := island.GetWorker(player, number)
		if w == nil {
			continue
		}
		for _, dest := range lmc.Destinations(island, w) {
			if len(lmc.BuildTargets(island, w, dest)) > 0 {
				return true
			}
		}
	}
	return false
}
