package host

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/santorini/internal/agent"
	"github.com/mitchelldurbincs/santorini/internal/config"
	"github.com/mitchelldurbincs/santorini/internal/game/mapgen"
	"github.com/mitchelldurbincs/santorini/internal/report"
	"github.com/mitchelldurbincs/santorini/internal/search"
)

// Seeds derives the random sources of one hosted match. A zero seed is
// replaced by the clock so repeated runs differ.
type Seeds struct {
	Host   uint64
	Search uint64
}

// SeedsFromConfig picks the seeds configured for match number n. Matches
// of one self-play batch get distinct seeds from the same base.
func SeedsFromConfig(cfg *config.Config, n int) Seeds {
	clock := uint64(time.Now().UnixNano())
	s := Seeds{Host: uint64(cfg.Host.Seed), Search: uint64(cfg.Search.Seed)}
	if s.Host == 0 {
		s.Host = clock
	}
	if s.Search == 0 {
		s.Search = clock ^ 0x5eed
	}
	s.Host += uint64(n) * 7919
	s.Search += uint64(n) * 104729
	return s
}

// RunnerConfig turns the host settings into a runner Config
func RunnerConfig(cfg *config.Config, gameID string) Config {
	return Config{
		GameID:      gameID,
		MaxAttempts: cfg.Host.MaxAttempts,
		MaxTurns:    cfg.Host.MaxTurns,
		RandomStart: cfg.Host.RandomStart,
	}
}

// NewSeat builds the agent configured for one seat. Every agent owns its
// random source; search agents get their own searcher.
func NewSeat(cfg *config.Config, seat config.PlayerConfig, seed uint64, w report.Writer, logger zerolog.Logger) (agent.Agent, error) {
	var searcher *search.Searcher
	if seat.Agent == agent.KindSearch {
		searcher = search.New(
			search.WithDepth(cfg.Search.Depth),
			search.WithParallelism(cfg.Search.Parallelism),
			search.WithAlphaBeta(cfg.Search.AlphaBeta),
			search.WithRand(rand.New(rand.NewSource(seed))),
			search.WithLogger(logger),
		)
	}

	a, err := agent.New(seat.Agent, seat.Name, searcher,
		agent.WithRand(rand.New(rand.NewSource(seed+1))),
		agent.WithPlacement(mapgen.PlacementConfig{MinWorkerSpacing: cfg.Host.Placement.MinWorkerSpacing}),
		agent.WithReportWriter(w),
		agent.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("seat %q: %w", seat.Name, err)
	}
	return a, nil
}

// NewConfiguredRunner seats the configured blue and white agents at a new
// runner. Extra options are applied after the configured ones.
func NewConfiguredRunner(cfg *config.Config, gameID string, seeds Seeds, w report.Writer, logger zerolog.Logger, options ...Option) (*Runner, error) {
	blue, err := NewSeat(cfg, cfg.Host.Players.Blue, seeds.Search, w, logger)
	if err != nil {
		return nil, err
	}
	white, err := NewSeat(cfg, cfg.Host.Players.White, seeds.Search+2, w, logger)
	if err != nil {
		return nil, err
	}

	opts := append([]Option{
		WithRand(rand.New(rand.NewSource(seeds.Host))),
		WithLogger(logger),
	}, options...)
	return NewRunner(RunnerConfig(cfg, gameID), blue, white, opts...), nil
}
