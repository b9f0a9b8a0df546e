package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mitchelldurbincs/santorini/internal/game"
)

var (
	// ErrWriterClosed is returned when writing to a closed writer
	ErrWriterClosed = errors.New("report writer closed")
)

// Report is the post-game record handed to a player
type Report struct {
	GameID     string        `json:"gameId"`
	Player     string        `json:"player"`
	Winner     string        `json:"winner,omitempty"`
	Turns      int           `json:"turns"`
	ReportedAt time.Time     `json:"reportedAt"`
	Snapshot   game.Snapshot `json:"snapshot"`
}

// New creates a report of snap addressed to player
func New(player string, snap game.Snapshot) Report {
	return Report{
		GameID:     snap.GameID,
		Player:     player,
		Winner:     snap.Winner,
		Turns:      snap.Turn,
		ReportedAt: time.Now().UTC(),
		Snapshot:   snap,
	}
}

// Writer stores reports
type Writer interface {
	Write(ctx context.Context, r Report) error
	Close() error
}

// Nop discards every report
type Nop struct{}

func (Nop) Write(context.Context, Report) error { return nil }
func (Nop) Close() error                        { return nil }

// Memory keeps reports in memory. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	reports []Report
	closed  bool
}

func (m *Memory) Write(_ context.Context, r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrWriterClosed
	}
	m.reports = append(m.reports, r)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Reports returns a copy of everything written so far
func (m *Memory) Reports() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Report(nil), m.reports...)
}
