package core

import (
	"strings"
)

// Island is the 5x5 board. It is the only owner of occupancy truth.
type Island struct {
	lands [CellCount]*Land
}

// NewIsland creates an island of empty lands at level 0
func NewIsland() *Island {
	is := &Island{}
	for i := range is.lands {
		is.lands[i] = newLand(CoordinateFromIndex(i))
	}
	return is
}

// TryGetLand returns the land at (x, y). Off-island coordinates return false.
func (is *Island) TryGetLand(x, y int) (*Land, bool) {
	c := NewCoordinate(x, y)
	if !c.IsValid() {
		return nil, false
	}
	return is.lands[c.Index()], true
}

func (is *Island) land(c Coordinate) *Land {
	return is.lands[c.Index()]
}

// Land returns the land at c, or nil when c is off the island
func (is *Island) Land(c Coordinate) *Land {
	if !c.IsValid() {
		return nil
	}
	return is.lands[c.Index()]
}

// Lands returns every land in row-major order
func (is *Island) Lands() []*Land {
	out := make([]*Land, len(is.lands))
	copy(out, is.lands[:])
	return out
}

// IsUnoccupied reports whether (x, y) is on the island, has no worker and no complete tower
func (is *Island) IsUnoccupied(x, y int) bool {
	l, ok := is.TryGetLand(x, y)
	return ok && l.IsUnoccupied()
}

// TryAddPiece places p on (x, y) following the land's placement rules
func (is *Island) TryAddPiece(p Piece, x, y int) bool {
	l, ok := is.TryGetLand(x, y)
	if !ok {
		return false
	}
	return l.TryPutPiece(p)
}

// GetWorker finds a placed worker by owner and number, or returns nil
func (is *Island) GetWorker(player string, number int) *Worker {
	for _, l := range is.lands {
		if l.worker != nil && l.worker.id.Matches(player, number) {
			return l.worker
		}
	}
	return nil
}

// Workers returns the placed workers in row-major order
func (is *Island) Workers() []*Worker {
	var out []*Worker
	for _, l := range is.lands {
		if l.worker != nil {
			out = append(out, l.worker)
		}
	}
	return out
}

// WorkersOf returns the placed workers owned by player
func (is *Island) WorkersOf(player string) []*Worker {
	var out []*Worker
	for _, l := range is.lands {
		if l.worker != nil && strings.EqualFold(l.worker.id.Player, player) {
			out = append(out, l.worker)
		}
	}
	return out
}

// CellState is the value form of a land: its tower level and occupant.
type CellState struct {
	Level    int       `json:"level"`
	Occupant *WorkerID `json:"occupant,omitempty"`
}

// Cells captures the island by value in row-major order
func (is *Island) Cells() [CellCount]CellState {
	var out [CellCount]CellState
	for i, l := range is.lands {
		out[i].Level = l.Level()
		if l.worker != nil {
			id := l.worker.id
			out[i].Occupant = &id
		}
	}
	return out
}

// SetLevel forces the tower height at c. It is meant for restoring saved
// positions; level 0 removes the tower. Lands with a worker are refused.
func (is *Island) SetLevel(c Coordinate, level int) bool {
	l := is.Land(c)
	if l == nil || l.worker != nil || level < 0 || level > MaxLevel {
		return false
	}
	if level == 0 {
		l.tower = nil
		return true
	}
	l.tower = &Tower{level: level}
	return true
}

// Hash returns a Zobrist hash of tower levels and worker placement
func (is *Island) Hash() uint64 {
	z := zobrist()
	var h uint64
	for i, l := range is.lands {
		h ^= z.levels[i][l.Level()]
		if w := l.worker; w != nil {
			h ^= mix64(z.workers[i][(w.id.Number-1)%WorkersPerPlayer] + nameSalt(w.id.Player))
		}
	}
	return h
}
