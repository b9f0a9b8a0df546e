package core

import (
	"fmt"
	"strings"
)

const (
	// MaxLevel is the height of a complete tower. Nothing moves onto or builds on it.
	MaxLevel = 4
	// WinningLevel is the height a worker must step onto to win.
	WinningLevel = 3
	// UnplacedLevel is reported by LandLevel for a worker that is not on the island.
	UnplacedLevel = -1
	// WorkersPerPlayer is the number of workers each player controls.
	WorkersPerPlayer = 2
)

// PieceKind tags the two kinds of piece a land can hold
type PieceKind int

const (
	PieceTower PieceKind = iota
	PieceWorker
)

func (k PieceKind) String() string {
	switch k {
	case PieceTower:
		return "Tower"
	case PieceWorker:
		return "Worker"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Piece is implemented only by *Tower and *Worker.
type Piece interface {
	Kind() PieceKind
	piece()
}

// Tower is a stack of building levels on a single land
type Tower struct {
	level int
}

// NewTower returns a freshly built tower at level 1
func NewTower() *Tower {
	return &Tower{level: 1}
}

func (t *Tower) Kind() PieceKind { return PieceTower }
func (t *Tower) piece()          {}

// Level returns the tower height, 1 through MaxLevel
func (t *Tower) Level() int {
	return t.level
}

// RaiseLevel adds one level and returns the new height. A complete tower is left as is.
func (t *Tower) RaiseLevel() int {
	if t.level < MaxLevel {
		t.level++
	}
	return t.level
}

// LowerLevel removes one level, never going below 1, and returns the new height.
func (t *Tower) LowerLevel() int {
	if t.level > 1 {
		t.level--
	}
	return t.level
}

// IsComplete reports whether the tower has reached MaxLevel
func (t *Tower) IsComplete() bool {
	return t.level >= MaxLevel
}

// WorkerID identifies a worker by its owner's name and its number
type WorkerID struct {
	Player string `json:"player"`
	Number int    `json:"number"`
}

// Matches compares player names case-insensitively and numbers exactly.
func (id WorkerID) Matches(player string, number int) bool {
	return id.Number == number && strings.EqualFold(id.Player, player)
}

func (id WorkerID) String() string {
	return fmt.Sprintf("%s#%d", id.Player, id.Number)
}

// Worker is a movable piece owned by a player.
// Its land is tracked by coordinate; the island holds the reverse link.
type Worker struct {
	id     WorkerID
	pos    Coordinate
	placed bool
	// level of the land the worker last stood on. Towers are never built
	// under a standing worker, so this stays accurate until the worker leaves.
	level int
}

// NewWorker creates an unplaced worker. An empty owner or a non-positive
// number is a programming error and panics.
func NewWorker(player string, number int) *Worker {
	if player == "" {
		panic("core: worker requires an owning player")
	}
	if number <= 0 {
		panic(fmt.Sprintf("core: worker number must be positive, got %d", number))
	}
	return &Worker{id: WorkerID{Player: player, Number: number}, level: UnplacedLevel}
}

func (w *Worker) Kind() PieceKind { return PieceWorker }
func (w *Worker) piece()          {}

func (w *Worker) ID() WorkerID   { return w.id }
func (w *Worker) Player() string { return w.id.Player }
func (w *Worker) Number() int    { return w.id.Number }
func (w *Worker) IsPlaced() bool { return w.placed }

// Position returns the worker's coordinate and whether it is placed
func (w *Worker) Position() (Coordinate, bool) {
	return w.pos, w.placed
}

// LandLevel returns the level the worker stands on, or UnplacedLevel.
func (w *Worker) LandLevel() int {
	if !w.placed {
		return UnplacedLevel
	}
	return w.level
}

// Is reports whether other refers to the same worker
func (w *Worker) Is(other *Worker) bool {
	return other != nil && w.id.Matches(other.id.Player, other.id.Number)
}

func (w *Worker) setLand(l *Land) {
	w.pos = l.coord
	w.placed = true
	w.level = l.Level()
}

// clearLand keeps the last level so the climb limit still applies to the next land.
func (w *Worker) clearLand() {
	w.placed = false
}

// reachable applies the rules shared by move and build: the target must be a
// different, adjacent land with no worker and no complete tower.
func (w *Worker) reachable(from Coordinate, to *Land) bool {
	if to == nil || to.coord.Equal(from) {
		return false
	}
	if to.HasWorker() || to.MaxLevelReached() {
		return false
	}
	return from.IsAdjacentTo(to.coord)
}

// CanMoveTo reports whether the worker may step onto c from where it stands
func (w *Worker) CanMoveTo(island *Island, c Coordinate) bool {
	if !w.placed {
		return false
	}
	dest, ok := island.TryGetLand(c.X, c.Y)
	if !ok || !w.reachable(w.pos, dest) {
		return false
	}
	return dest.Level() <= w.level+1
}

// TryMoveTo moves the worker to (x, y). The board is unchanged on failure.
func (w *Worker) TryMoveTo(island *Island, x, y int) bool {
	to := NewCoordinate(x, y)
	if !w.CanMoveTo(island, to) {
		return false
	}
	from := island.land(w.pos)
	dest := island.land(to)
	if !from.TryRemoveWorker(w) {
		return false
	}
	if !dest.TryPutPiece(w) {
		// CanMoveTo vetted the destination; restore the origin regardless.
		from.placeWorker(w)
		return false
	}
	return true
}

// CanBuildAt reports whether the worker may build at c from where it stands
func (w *Worker) CanBuildAt(island *Island, c Coordinate) bool {
	if !w.placed {
		return false
	}
	target, ok := island.TryGetLand(c.X, c.Y)
	return ok && w.reachable(w.pos, target)
}

// TryBuildAt raises the tower at (x, y), or builds a new one at level 1.
func (w *Worker) TryBuildAt(island *Island, x, y int) bool {
	at := NewCoordinate(x, y)
	if !w.CanBuildAt(island, at) {
		return false
	}
	target := island.land(at)
	if target.HasTower() {
		target.tower.RaiseLevel()
		return true
	}
	return target.TryPutPiece(NewTower())
}

// TryReturnTo moves the worker back to origin without the climb limit.
// It exists to reverse a move: the origin must be adjacent and free of workers.
func (w *Worker) TryReturnTo(island *Island, origin Coordinate) bool {
	if !w.placed {
		return false
	}
	dest, ok := island.TryGetLand(origin.X, origin.Y)
	if !ok || dest.HasWorker() || !w.pos.IsAdjacentTo(origin) {
		return false
	}
	from := island.land(w.pos)
	if !from.TryRemoveWorker(w) {
		return false
	}
	dest.placeWorker(w)
	return true
}
