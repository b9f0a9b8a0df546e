// Package agent holds the players a host can seat at a match. Every agent
// decides from a game.Snapshot only, the same view a remote player gets.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/mapgen"
	"github.com/mitchelldurbincs/santorini/internal/report"
	"github.com/mitchelldurbincs/santorini/internal/search"
)

// Agent kinds accepted by New
const (
	KindSearch = "search"
	KindGreedy = "greedy"
	KindRandom = "random"
)

var (
	ErrUnknownKind = errors.New("unknown agent kind")
	ErrNoRoom      = errors.New("no free lands left for placement")
)

//go:generate go tool mockgen -destination=./mocks/agent_mock.go -package=mocks . Agent

// Agent is a player seated at a match by a host
type Agent interface {
	Name() string
	PlaceWorkers(ctx context.Context, snap game.Snapshot) (core.PlaceWorkersCommand, error)
	NextMove(ctx context.Context, snap game.Snapshot) (core.MoveCommand, error)
	Report(ctx context.Context, snap game.Snapshot) error
}

type Option func(b *base)

// WithRand sets the source used for placement and random choices
func WithRand(rng *rand.Rand) Option {
	return func(b *base) {
		if rng != nil {
			b.rng = rng
		}
	}
}

// WithPlacement sets the spacing rules for choosing starting lands
func WithPlacement(config mapgen.PlacementConfig) Option {
	return func(b *base) {
		b.placement = config
	}
}

// WithReportWriter sets where post-game reports go
func WithReportWriter(w report.Writer) Option {
	return func(b *base) {
		if w != nil {
			b.reports = w
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// base carries what every agent shares: a name, placement and reporting
type base struct {
	name      string
	rng       *rand.Rand
	placement mapgen.PlacementConfig
	placer    *mapgen.Generator
	reports   report.Writer
	logger    zerolog.Logger
}

func newBase(name, kind string, options []Option) base {
	b := base{
		name:      name,
		rng:       rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		placement: mapgen.DefaultPlacementConfig(),
		reports:   report.Nop{},
		logger:    zerolog.Nop(),
	}
	for _, option := range options {
		option(&b)
	}
	b.placer = mapgen.NewGenerator(b.placement, b.rng)
	b.logger = b.logger.With().Str("component", "Agent").Str("agent", kind).Str("player", name).Logger()
	return b
}

func (b *base) Name() string { return b.name }

// PlaceWorkers picks two free lands away from the workers already down
func (b *base) PlaceWorkers(ctx context.Context, snap game.Snapshot) (core.PlaceWorkersCommand, error) {
	if err := ctx.Err(); err != nil {
		return core.PlaceWorkersCommand{}, err
	}

	var workers, domes []core.Coordinate
	for _, cell := range snap.Cells {
		switch {
		case cell.Occupied:
			workers = append(workers, cell.Coordinate)
		case cell.Level == core.MaxLevel:
			domes = append(domes, cell.Coordinate)
		}
	}

	cmd, ok := b.placer.PlaceWorkers(workers, domes)
	if !ok {
		return core.PlaceWorkersCommand{}, ErrNoRoom
	}
	b.logger.Debug().
		Str("worker_one", cmd.WorkerOne.String()).
		Str("worker_two", cmd.WorkerTwo.String()).
		Msg("Chose placement")
	return cmd, nil
}

// Report hands the final snapshot to the report writer
func (b *base) Report(ctx context.Context, snap game.Snapshot) error {
	if err := b.reports.Write(ctx, report.New(b.name, snap)); err != nil {
		return fmt.Errorf("report for %s: %w", b.name, err)
	}
	b.logger.Info().Str("game_id", snap.GameID).Str("winner", snap.Winner).Msg("Received game report")
	return nil
}

// restore rebuilds a private match to think on
func (b *base) restore(snap game.Snapshot) (*game.Match, error) {
	m, err := game.Restore(snap, game.MatchConfig{GameID: snap.GameID, Logger: zerolog.Nop()})
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", b.name, err)
	}
	return m, nil
}

// New creates an agent of the given kind. searcher is only used by
// KindSearch and may be nil for the others.
func New(kind, name string, searcher *search.Searcher, options ...Option) (Agent, error) {
	switch kind {
	case KindSearch:
		return NewSearchAgent(name, searcher, options...), nil
	case KindGreedy:
		return NewGreedyAgent(name, options...), nil
	case KindRandom:
		return NewRandomAgent(name, options...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
