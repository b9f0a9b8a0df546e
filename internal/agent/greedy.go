package agent

import (
	"context"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/search"
)

// GreedyAgent plays the move that looks best one ply ahead
type GreedyAgent struct {
	base
}

func NewGreedyAgent(name string, options ...Option) *GreedyAgent {
	return &GreedyAgent{base: newBase(name, KindGreedy, options)}
}

func (a *GreedyAgent) NextMove(ctx context.Context, snap game.Snapshot) (core.MoveCommand, error) {
	if err := ctx.Err(); err != nil {
		return core.MoveCommand{}, err
	}
	m, err := a.restore(snap)
	if err != nil {
		return core.MoveCommand{}, err
	}

	cmd, score, err := search.Greedy(m, a.name, a.rng)
	if err != nil {
		return core.MoveCommand{}, err
	}
	a.logger.Debug().Str("command", cmd.String()).Int("score", score).Msg("Picked move")
	return cmd, nil
}
