package agent

import (
	"context"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/search"
)

// RandomAgent picks one of its workers at random and plays a random legal
// command for it, falling back to the other worker when it is stuck.
type RandomAgent struct {
	base
}

func NewRandomAgent(name string, options ...Option) *RandomAgent {
	return &RandomAgent{base: newBase(name, KindRandom, options)}
}

func (a *RandomAgent) NextMove(ctx context.Context, snap game.Snapshot) (core.MoveCommand, error) {
	if err := ctx.Err(); err != nil {
		return core.MoveCommand{}, err
	}
	m, err := a.restore(snap)
	if err != nil {
		return core.MoveCommand{}, err
	}

	var byWorker [core.WorkersPerPlayer][]core.MoveCommand
	for _, cmd := range m.LegalCommands(a.name) {
		byWorker[cmd.WorkerNumber-1] = append(byWorker[cmd.WorkerNumber-1], cmd)
	}

	first := a.rng.Intn(core.WorkersPerPlayer)
	for _, i := range []int{first, 1 - first} {
		if options := byWorker[i]; len(options) > 0 {
			return options[a.rng.Intn(len(options))], nil
		}
	}
	return core.MoveCommand{}, search.ErrNoLegalMove
}
