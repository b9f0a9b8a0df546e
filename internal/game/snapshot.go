package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/states"
)

// CellSnapshot describes one land
type CellSnapshot struct {
	Coordinate core.Coordinate `json:"coordinate"`
	Level      int             `json:"level"`
	Occupied   bool            `json:"occupied"`
	Player     string          `json:"player,omitempty"`
	Worker     int             `json:"worker,omitempty"`
}

// WorkerSnapshot describes one worker of a player
type WorkerSnapshot struct {
	Number   int              `json:"number"`
	Placed   bool             `json:"placed"`
	Position *core.Coordinate `json:"position,omitempty"`
}

// PlayerSnapshot describes a registered player
type PlayerSnapshot struct {
	Name    string           `json:"name"`
	Workers []WorkerSnapshot `json:"workers"`
}

// Snapshot is the serializable view of a match handed to players, clients
// and reports. Cells are in row-major order, x then y, origin at (0,0).
type Snapshot struct {
	GameID      string             `json:"gameId"`
	Phase       string             `json:"phase"`
	Cells       []CellSnapshot     `json:"cells"`
	Players     []PlayerSnapshot   `json:"players"`
	History     []core.MoveCommand `json:"history"`
	Winner      string             `json:"winner,omitempty"`
	NextPlayer  string             `json:"nextPlayer,omitempty"`
	FirstPlacer string             `json:"firstPlacer,omitempty"`
	Turn        int                `json:"turn"`
}

// Snapshot captures the current match state
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		GameID:  m.id,
		Phase:   m.Phase().String(),
		Cells:   make([]CellSnapshot, 0, core.CellCount),
		Players: make([]PlayerSnapshot, 0, len(m.players)),
		History: m.History(),
		Turn:    len(m.history),
	}

	for i, cell := range m.island.Cells() {
		cs := CellSnapshot{Coordinate: core.CoordinateFromIndex(i), Level: cell.Level}
		if cell.Occupant != nil {
			cs.Occupied = true
			cs.Player = cell.Occupant.Player
			cs.Worker = cell.Occupant.Number
		}
		snap.Cells = append(snap.Cells, cs)
	}

	for _, p := range m.players {
		ps := PlayerSnapshot{Name: p.Name(), Workers: make([]WorkerSnapshot, 0, core.WorkersPerPlayer)}
		for _, w := range p.Workers() {
			ws := WorkerSnapshot{Number: w.Number()}
			if pos, placed := w.Position(); placed {
				ws.Placed = true
				ws.Position = &pos
			}
			ps.Workers = append(ps.Workers, ws)
		}
		snap.Players = append(snap.Players, ps)
	}

	if m.winner != nil {
		snap.Winner = m.winner.Name()
	}
	if next := m.NextPlayer(); next != nil {
		snap.NextPlayer = next.Name()
	}
	if first := m.FirstPlacer(); first != nil {
		snap.FirstPlacer = first.Name()
	}
	return snap
}

// Cell returns the snapshot of the land at c
func (s Snapshot) Cell(c core.Coordinate) (CellSnapshot, bool) {
	if !c.IsValid() || len(s.Cells) != core.CellCount {
		return CellSnapshot{}, false
	}
	return s.Cells[c.Index()], true
}

// Opponent returns the name of the other registered player
func (s Snapshot) Opponent(name string) string {
	for _, p := range s.Players {
		if !strings.EqualFold(p.Name, name) {
			return p.Name
		}
	}
	return ""
}

// Restore rebuilds a match from a snapshot. Levels and worker positions come
// from the cells; the snapshot is rejected if it is inconsistent.
func Restore(snap Snapshot, cfg MatchConfig) (*Match, error) {
	if cfg.GameID == "" {
		cfg.GameID = snap.GameID
	}
	m := NewMatch(cfg)

	for _, p := range snap.Players {
		if err := m.AddPlayer(p.Name); err != nil {
			return nil, fmt.Errorf("restore player %q: %w", p.Name, err)
		}
	}

	if len(snap.Cells) != core.CellCount {
		return nil, fmt.Errorf("restore: expected %d cells, got %d", core.CellCount, len(snap.Cells))
	}
	seen := make(map[core.Coordinate]bool, core.CellCount)
	for _, cell := range snap.Cells {
		if !cell.Coordinate.IsValid() || seen[cell.Coordinate] {
			return nil, fmt.Errorf("restore cell %s: %w", cell.Coordinate, core.ErrInvalidCoordinates)
		}
		seen[cell.Coordinate] = true
		if !m.island.SetLevel(cell.Coordinate, cell.Level) {
			return nil, fmt.Errorf("restore cell %s: invalid level %d", cell.Coordinate, cell.Level)
		}
	}

	for _, cell := range snap.Cells {
		if !cell.Occupied {
			continue
		}
		p := m.Player(cell.Player)
		if p == nil {
			return nil, fmt.Errorf("restore cell %s: %w", cell.Coordinate, core.ErrUnknownPlayer)
		}
		w := p.Worker(cell.Worker)
		if w == nil {
			return nil, fmt.Errorf("restore cell %s: %w", cell.Coordinate, core.ErrUnknownWorker)
		}
		if w.IsPlaced() || !m.island.TryAddPiece(w, cell.Coordinate.X, cell.Coordinate.Y) {
			return nil, fmt.Errorf("restore cell %s: %w", cell.Coordinate, core.ErrLandOccupied)
		}
		m.placed++
	}

	if err := m.restorePlacementOrder(snap.FirstPlacer); err != nil {
		return nil, err
	}

	m.history = append(m.history, snap.History...)

	over, winner := m.winCheck.CheckGameOver(m.island)
	switch {
	case over && (snap.Winner == "" || m.Player(snap.Winner) == nil || !m.Player(snap.Winner).Is(winner)):
		return nil, fmt.Errorf("restore: %s stands on the winning level but winner is %q", winner, snap.Winner)
	case !over && snap.Winner != "":
		return nil, fmt.Errorf("restore: winner %q without a worker on the winning level", snap.Winner)
	case over:
		m.winner = m.Player(winner)
	}

	m.machine.Restore(m.Phase())
	return m, nil
}

// restorePlacementOrder recovers the first placer and checks that placed
// workers agree with the placement counter.
func (m *Match) restorePlacementOrder(firstPlacer string) error {
	if m.placed == 0 {
		return nil
	}
	first := m.Player(firstPlacer)
	if first == nil {
		// fall back to the player with more workers down; ties go to the first seat
		first = m.players[0]
		if len(m.players) == maxPlayers && m.players[1].PlacedWorkers() > first.PlacedWorkers() {
			first = m.players[1]
		}
	}
	m.firstPlacer = m.seatOf(first)

	want := m.placed
	if want > core.WorkersPerPlayer {
		want = core.WorkersPerPlayer
	}
	if first.PlacedWorkers() != want {
		return fmt.Errorf("restore: first placer %q has %d workers placed, expected %d",
			first.Name(), first.PlacedWorkers(), want)
	}
	return nil
}

// Clone returns an independent copy of the match with no event bus and a
// silent logger. It panics if the match cannot be rebuilt or the copy's
// island hashes differently, which would mean its own state is inconsistent.
func (m *Match) Clone() *Match {
	c, err := Restore(m.Snapshot(), MatchConfig{GameID: m.id, Logger: zerolog.Nop()})
	if err != nil {
		panic(fmt.Sprintf("game: clone of %s failed: %v", m.id, err))
	}
	if want, got := m.island.Hash(), c.island.Hash(); want != got {
		panic(fmt.Sprintf("game: clone of %s has island hash %x, want %x", m.id, got, want))
	}
	c.startedAt = m.startedAt
	return c
}

// PhaseOf parses the phase recorded in a snapshot
func (s Snapshot) PhaseOf() states.GamePhase {
	phase, err := states.ParsePhase(s.Phase)
	if err != nil {
		return states.DerivePhase(len(s.Players), s.placedWorkers(), s.Winner != "")
	}
	return phase
}

func (s Snapshot) placedWorkers() int {
	n := 0
	for _, c := range s.Cells {
		if c.Occupied {
			n++
		}
	}
	return n
}
