// Package host seats two agents at a match and relays their commands into
// it until the game ends.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/santorini/internal/agent"
	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/events"
)

// DefaultMaxAttempts bounds how often an agent is asked for a placement or
// a move before the host gives up on it
const DefaultMaxAttempts = 10

var (
	ErrNotSetUp         = errors.New("match is not set up")
	ErrAlreadySetUp     = errors.New("match is already set up")
	ErrStalled          = errors.New("player has no legal move")
	ErrAttemptsExceeded = errors.New("agent exceeded its attempts")
	ErrWrongPlayer      = errors.New("command names another player")
	ErrSameName         = errors.New("agents share a name")
)

// Config holds the limits of a hosted match
type Config struct {
	GameID      string
	MaxAttempts int
	// MaxTurns ends the match undecided after this many turns; 0 means no limit
	MaxTurns int
	// RandomStart lets the RNG decide who places and moves first; otherwise
	// the blue agent starts.
	RandomStart bool
}

// TurnInfo describes one accepted turn
type TurnInfo struct {
	Turn     int
	Player   string
	Command  core.MoveCommand
	Attempts int
	Snapshot game.Snapshot
}

// Result is the outcome of Run
type Result struct {
	GameID        string
	Winner        string
	Turns         int
	Stalled       bool
	StalledPlayer string
	TurnLimit     bool
	Duration      time.Duration
	Snapshot      game.Snapshot
}

type Option func(r *Runner)

func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) {
		if rng != nil {
			r.rng = rng
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithEventBus publishes the match's events on bus
func WithEventBus(bus *events.EventBus) Option {
	return func(r *Runner) {
		r.bus = bus
	}
}

// WithOnTurn registers a callback run after every accepted turn
func WithOnTurn(fn func(TurnInfo)) Option {
	return func(r *Runner) {
		r.onTurn = fn
	}
}

// Runner drives one match between two agents
type Runner struct {
	cfg    Config
	blue   agent.Agent
	white  agent.Agent
	rng    *rand.Rand
	logger zerolog.Logger
	bus    *events.EventBus
	onTurn func(TurnInfo)

	match *game.Match
	// order[0] places and moves first
	order [2]agent.Agent
	setUp bool
}

// NewRunner creates a runner for blue and white
func NewRunner(cfg Config, blue, white agent.Agent, options ...Option) *Runner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	r := &Runner{
		cfg:    cfg,
		blue:   blue,
		white:  white,
		rng:    rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(r)
	}

	r.match = game.NewMatch(game.MatchConfig{GameID: cfg.GameID, Logger: r.logger, EventBus: r.bus})
	r.logger = r.logger.With().Str("component", "Runner").Str("game_id", r.match.ID()).Logger()
	return r
}

// Match returns the hosted match
func (r *Runner) Match() *game.Match { return r.match }

// Setup registers both agents and asks each for its workers, first player
// first. Rejected placements are retried up to MaxAttempts times.
func (r *Runner) Setup(ctx context.Context) error {
	if r.setUp {
		return ErrAlreadySetUp
	}
	if strings.EqualFold(r.blue.Name(), r.white.Name()) {
		return fmt.Errorf("%w: %q", ErrSameName, r.blue.Name())
	}

	for _, a := range []agent.Agent{r.blue, r.white} {
		if err := r.match.AddPlayer(a.Name()); err != nil {
			return fmt.Errorf("register %q: %w", a.Name(), err)
		}
		r.logger.Debug().Str("player", a.Name()).Msg("Player added")
	}

	r.order = [2]agent.Agent{r.blue, r.white}
	if r.cfg.RandomStart && r.rng.Intn(2) == 1 {
		r.order = [2]agent.Agent{r.white, r.blue}
	}
	r.logger.Info().Str("player", r.order[0].Name()).Msg("Starting player chosen")

	for _, a := range r.order {
		if err := r.placeWorkers(ctx, a); err != nil {
			return err
		}
	}
	r.setUp = true
	return nil
}

func (r *Runner) placeWorkers(ctx context.Context, a agent.Agent) error {
	name := a.Name()
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		cmd, err := a.PlaceWorkers(ctx, r.match.Snapshot())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.logger.Debug().Err(err).Str("player", name).Int("attempt", attempt).Msg("Placement request failed")
			continue
		}
		if err := r.match.PlaceWorkers(name, cmd); err != nil {
			r.logger.Debug().Err(err).Str("player", name).Int("attempt", attempt).Msg("Placement rejected")
			continue
		}

		r.logger.Info().
			Str("player", name).
			Str("worker_one", cmd.WorkerOne.String()).
			Str("worker_two", cmd.WorkerTwo.String()).
			Msg("Workers placed")
		return nil
	}
	return fmt.Errorf("place workers of %q: %w", name, ErrAttemptsExceeded)
}

// PlayTurn asks the player to move until a command is accepted. A player
// with no legal command stalls the match with ErrStalled.
func (r *Runner) PlayTurn(ctx context.Context) (TurnInfo, error) {
	if !r.setUp {
		return TurnInfo{}, ErrNotSetUp
	}
	if r.match.GameIsOver() {
		return TurnInfo{}, core.ErrGameOver
	}

	player := r.match.NextPlayer()
	a := r.agentFor(player.Name())
	if !r.match.HasLegalMove(player.Name()) {
		return TurnInfo{Player: player.Name()}, fmt.Errorf("%q: %w", player.Name(), ErrStalled)
	}

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		cmd, err := a.NextMove(ctx, r.match.Snapshot())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return TurnInfo{}, ctxErr
			}
			r.logger.Debug().Err(err).Str("player", player.Name()).Int("attempt", attempt).Msg("Move request failed")
			continue
		}
		if err := r.apply(player, cmd); err != nil {
			r.logger.Debug().Err(err).Str("player", player.Name()).Int("attempt", attempt).Msg("Move rejected")
			continue
		}

		info := TurnInfo{
			Turn:     r.match.Turn(),
			Player:   player.Name(),
			Command:  cmd,
			Attempts: attempt,
			Snapshot: r.match.Snapshot(),
		}
		r.logger.Info().
			Int("turn", info.Turn).
			Str("player", info.Player).
			Str("command", cmd.String()).
			Msg("Move made")
		if r.onTurn != nil {
			r.onTurn(info)
		}
		return info, nil
	}
	return TurnInfo{}, fmt.Errorf("move of %q: %w", player.Name(), ErrAttemptsExceeded)
}

// apply enforces turn order, which the match leaves to its caller
func (r *Runner) apply(player *game.Player, cmd core.MoveCommand) error {
	if !player.Is(cmd.PlayerName) {
		return fmt.Errorf("%w: %q", ErrWrongPlayer, cmd.PlayerName)
	}
	return r.match.ApplyMove(cmd)
}

func (r *Runner) agentFor(name string) agent.Agent {
	if strings.EqualFold(r.blue.Name(), name) {
		return r.blue
	}
	return r.white
}

// Run sets the match up if needed and plays it to the end, a stall or the
// turn limit, then reports the final state to both agents.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	if !r.setUp {
		if err := r.Setup(ctx); err != nil {
			return Result{}, err
		}
	}
	r.logger.Info().Msg("Game started")

	result := Result{GameID: r.match.ID()}
	for !r.match.GameIsOver() {
		if r.cfg.MaxTurns > 0 && r.match.Turn() >= r.cfg.MaxTurns {
			result.TurnLimit = true
			r.logger.Warn().Int("max_turns", r.cfg.MaxTurns).Msg("Turn limit reached")
			break
		}

		info, err := r.PlayTurn(ctx)
		if errors.Is(err, ErrStalled) {
			result.Stalled = true
			result.StalledPlayer = info.Player
			r.logger.Warn().Str("player", info.Player).Msg("Player cannot move")
			break
		}
		if err != nil {
			return Result{}, err
		}
	}

	result.Turns = r.match.Turn()
	result.Duration = time.Since(start)
	result.Snapshot = r.match.Snapshot()
	if w := r.match.Winner(); w != nil {
		result.Winner = w.Name()
		r.logger.Info().Str("winner", result.Winner).Int("turns", result.Turns).Msg("Game is over")
	}

	for _, a := range r.order {
		if err := a.Report(ctx, result.Snapshot); err != nil {
			r.logger.Warn().Err(err).Str("player", a.Name()).Msg("Failed to deliver game report")
		}
	}
	return result, nil
}
