package agent

import (
	"context"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/search"
)

// SearchAgent moves with the minimax searcher
type SearchAgent struct {
	base
	searcher *search.Searcher
}

// NewSearchAgent creates a search agent. A nil searcher gets the default one.
func NewSearchAgent(name string, searcher *search.Searcher, options ...Option) *SearchAgent {
	a := &SearchAgent{base: newBase(name, KindSearch, options)}
	if searcher == nil {
		searcher = search.New(search.WithRand(a.rng), search.WithLogger(a.logger))
	}
	a.searcher = searcher
	return a
}

func (a *SearchAgent) NextMove(ctx context.Context, snap game.Snapshot) (core.MoveCommand, error) {
	m, err := a.restore(snap)
	if err != nil {
		return core.MoveCommand{}, err
	}
	result, err := a.searcher.BestMove(ctx, m, a.name)
	if err != nil {
		return core.MoveCommand{}, err
	}

	a.logger.Debug().
		Str("command", result.Command.String()).
		Int("score", result.Score).
		Int64("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).
		Msg("Picked move")
	return result.Command, nil
}
