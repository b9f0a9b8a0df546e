package search

import (
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// Greedy returns player's legal command with the highest AssessCommand
// score. Ties are broken with rng, or by the first candidate when rng is nil.
func Greedy(m *game.Match, player string, rng *rand.Rand) (core.MoveCommand, int, error) {
	candidates := m.LegalCommands(player)
	if len(candidates) == 0 {
		return core.MoveCommand{}, 0, ErrNoLegalMove
	}

	best := -Infinity - 1
	var ties []core.MoveCommand
	for _, cmd := range candidates {
		value := AssessCommand(m, cmd)
		switch {
		case value > best:
			best = value
			ties = append(ties[:0], cmd)
		case value == best:
			ties = append(ties, cmd)
		}
	}

	if rng == nil || len(ties) == 1 {
		return ties[0], best, nil
	}
	return ties[rng.Intn(len(ties))], best, nil
}
