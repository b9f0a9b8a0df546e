package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// DefaultDepth is the number of plies searched when no depth is given
const DefaultDepth = 4

var (
	ErrNoLegalMove   = errors.New("no legal move")
	ErrNotYourTurn   = errors.New("not the player's turn")
	ErrUnknownPlayer = errors.New("player is not registered in the match")
)

type Option func(s *Searcher)

// WithDepth sets the search depth in plies. Values below 1 are ignored.
func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithEvaluator(evaluate Evaluator) Option {
	return func(s *Searcher) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

// WithParallelism bounds how many root moves are searched at once
func WithParallelism(goroutines int) Option {
	return func(s *Searcher) {
		if goroutines > 0 {
			s.parallelism = goroutines
		}
	}
}

// WithRand sets the source used to break ties between equally scored moves
func WithRand(rng *rand.Rand) Option {
	return func(s *Searcher) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithAlphaBeta prunes branches that cannot change a root move's value.
// Scores are identical to the full-width search.
func WithAlphaBeta(enabled bool) Option {
	return func(s *Searcher) {
		s.alphaBeta = enabled
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger.With().Str("component", "Searcher").Logger()
	}
}

// Searcher picks moves with a depth-limited minimax search
type Searcher struct {
	depth       int
	evaluate    Evaluator
	parallelism int
	alphaBeta   bool
	logger      zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Result describes the outcome of one search
type Result struct {
	Command    core.MoveCommand
	Score      int
	Candidates int
	Ties       int
	Nodes      int64
	Elapsed    time.Duration
}

// New creates a searcher. Defaults: depth 4, default evaluation, one
// goroutine, no pruning and a time-seeded tie breaker.
func New(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		depth:       DefaultDepth,
		evaluate:    Evaluate,
		parallelism: 1,
		logger:      zerolog.Nop(),
		rng:         rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Searcher) Depth() int { return s.depth }

// BestMove searches the match for player's best command. The match itself is
// never modified: every root move is searched on a private clone.
func (s *Searcher) BestMove(ctx context.Context, m *game.Match, player string) (Result, error) {
	start := time.Now()
	me := m.Player(player)
	if me == nil {
		return Result{}, ErrUnknownPlayer
	}
	if m.GameIsOver() {
		return Result{}, core.ErrGameOver
	}
	if next := m.NextPlayer(); next == nil || next != me {
		return Result{}, ErrNotYourTurn
	}
	candidates := m.LegalCommands(me.Name())
	if len(candidates) == 0 {
		return Result{}, ErrNoLegalMove
	}
	opponent := m.Opponent(me.Name()).Name()

	workers := s.parallelism
	if workers > len(candidates) {
		workers = len(candidates)
	}
	clones := make(chan *game.Match, workers)
	for i := 0; i < workers; i++ {
		clones <- m.Clone()
	}

	scores := make([]int, len(candidates))
	var nodes atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cmd := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			clone := <-clones
			defer func() { clones <- clone }()

			n := &node{searcher: s, ctx: gctx, me: me.Name(), opponent: opponent}
			score, err := n.root(clone, cmd)
			nodes.Add(n.visited)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := -Infinity - 1
	var ties []int
	for i, score := range scores {
		switch {
		case score > best:
			best = score
			ties = append(ties[:0], i)
		case score == best:
			ties = append(ties, i)
		}
	}
	pick := ties[s.intn(len(ties))]

	result := Result{
		Command:    candidates[pick],
		Score:      best,
		Candidates: len(candidates),
		Ties:       len(ties),
		Nodes:      nodes.Load(),
		Elapsed:    time.Since(start),
	}
	s.logger.Debug().
		Str("player", me.Name()).
		Str("command", result.Command.String()).
		Int("score", result.Score).
		Int("candidates", result.Candidates).
		Int("ties", result.Ties).
		Int64("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).
		Msg("Search complete")
	return result, nil
}

func (s *Searcher) intn(n int) int {
	if n <= 1 {
		return 0
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// node carries the per-goroutine state of one root move's search
type node struct {
	searcher     *Searcher
	ctx          context.Context
	me, opponent string
	visited      int64
}

// root scores a single root command with a full window, so pruning inside
// the subtree never changes its value.
func (n *node) root(m *game.Match, cmd core.MoveCommand) (int, error) {
	var score int
	err := n.play(m, cmd, func() error {
		var err error
		score, err = n.minimize(m, n.searcher.depth-1, -Infinity, Infinity)
		return err
	})
	return score, err
}

func (n *node) maximize(m *game.Match, depth, alpha, beta int) (int, error) {
	n.visited++
	if depth == 0 || m.GameIsOver() {
		return n.searcher.evaluate(m, n.me), nil
	}
	if err := n.checkContext(depth); err != nil {
		return 0, err
	}

	best := -Infinity
	for _, cmd := range m.LegalCommands(n.me) {
		var value int
		err := n.play(m, cmd, func() error {
			var err error
			value, err = n.minimize(m, depth-1, alpha, beta)
			return err
		})
		if err != nil {
			return 0, err
		}
		if value > best {
			best = value
		}
		if n.searcher.alphaBeta {
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
	}
	return best, nil
}

func (n *node) minimize(m *game.Match, depth, alpha, beta int) (int, error) {
	n.visited++
	if depth == 0 || m.GameIsOver() {
		return n.searcher.evaluate(m, n.me), nil
	}
	if err := n.checkContext(depth); err != nil {
		return 0, err
	}

	best := Infinity
	for _, cmd := range m.LegalCommands(n.opponent) {
		var value int
		err := n.play(m, cmd, func() error {
			var err error
			value, err = n.maximize(m, depth-1, alpha, beta)
			return err
		})
		if err != nil {
			return 0, err
		}
		if value < best {
			best = value
		}
		if n.searcher.alphaBeta {
			if best < beta {
				beta = best
			}
			if alpha >= beta {
				break
			}
		}
	}
	return best, nil
}

// play applies cmd, runs next and takes cmd back
func (n *node) play(m *game.Match, cmd core.MoveCommand, next func() error) error {
	origin, _ := m.Player(cmd.PlayerName).Worker(cmd.WorkerNumber).Position()
	if err := m.ApplyMove(cmd); err != nil {
		return fmt.Errorf("search: generated command rejected: %w", err)
	}
	err := next()
	if undoErr := m.UndoCommand(cmd, origin); undoErr != nil {
		panic(fmt.Sprintf("search: undo of %s failed: %v", cmd, undoErr))
	}
	return err
}

// checkContext polls for cancellation away from the leaves
func (n *node) checkContext(depth int) error {
	if depth < 2 {
		return nil
	}
	return n.ctx.Err()
}
