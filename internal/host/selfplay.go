package host

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/santorini/internal/report"
)

// Summary tallies the results of a batch of matches
type Summary struct {
	Games     int
	Wins      map[string]int
	Stalls    int
	TurnLimit int
	Turns     int
	Duration  time.Duration
}

// AverageTurns returns the mean match length
func (s Summary) AverageTurns() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Games)
}

// Players returns every winner name in order
func (s Summary) Players() []string {
	names := make([]string, 0, len(s.Wins))
	for name := range s.Wins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Summary) add(r Result) {
	s.Games++
	s.Turns += r.Turns
	switch {
	case r.Winner != "":
		s.Wins[r.Winner]++
	case r.Stalled:
		s.Stalls++
	case r.TurnLimit:
		s.TurnLimit++
	}
}

// RunnerFactory builds the runner of match number i
type RunnerFactory func(i int) (*Runner, error)

// PlayMany plays games matches with at most parallel of them at once. The
// first failing match cancels the rest.
func PlayMany(ctx context.Context, games, parallel int, newRunner RunnerFactory) (Summary, error) {
	start := time.Now()
	summary := Summary{Wins: make(map[string]int)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i := 0; i < games; i++ {
		g.Go(func() error {
			r, err := newRunner(i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			result, err := r.Run(ctx)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}

			mu.Lock()
			summary.add(result)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	summary.Duration = time.Since(start)
	return summary, err
}

// SummarizeReports tallies stored reports, counting each game once. A game
// without a winner counts against the turn limit when it reached maxTurns
// and as a stall otherwise.
func SummarizeReports(reports []report.Report, maxTurns int) Summary {
	summary := Summary{Wins: make(map[string]int)}
	seen := make(map[string]bool)
	for _, r := range reports {
		if seen[r.GameID] {
			continue
		}
		seen[r.GameID] = true
		summary.add(Result{
			Winner:    r.Winner,
			Turns:     r.Turns,
			TurnLimit: r.Winner == "" && maxTurns > 0 && r.Turns >= maxTurns,
			Stalled:   r.Winner == "" && (maxTurns <= 0 || r.Turns < maxTurns),
		})
	}
	return summary
}
