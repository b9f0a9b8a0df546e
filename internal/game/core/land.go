package core

import "fmt"

// Land is one cell of the island. It holds at most one tower and one worker.
type Land struct {
	coord  Coordinate
	tower  *Tower
	worker *Worker
}

func newLand(c Coordinate) *Land {
	if !c.IsValid() {
		panic(fmt.Sprintf("core: land coordinate %s is off the island", c))
	}
	return &Land{coord: c}
}

func (l *Land) Coordinate() Coordinate { return l.coord }
func (l *Land) HasTower() bool         { return l.tower != nil }
func (l *Land) HasWorker() bool        { return l.worker != nil }

// Tower returns the tower on the land, or nil
func (l *Land) Tower() *Tower { return l.tower }

// Worker returns the worker standing on the land, or nil
func (l *Land) Worker() *Worker { return l.worker }

// Level returns the tower height, 0 without a tower
func (l *Land) Level() int {
	if l.tower == nil {
		return 0
	}
	return l.tower.Level()
}

// MaxLevelReached reports whether the land carries a complete tower
func (l *Land) MaxLevelReached() bool {
	return l.tower != nil && l.tower.IsComplete()
}

// IsUnoccupied reports whether a worker could stand here: no worker and no complete tower.
func (l *Land) IsUnoccupied() bool {
	return l.worker == nil && !l.MaxLevelReached()
}

// TryPutPiece places a tower or worker on the land.
// A tower needs an empty land. A worker must first be taken off any land it
// stands on, needs a land without a worker and, when it stood somewhere
// before, may climb at most one level.
func (l *Land) TryPutPiece(p Piece) bool {
	switch piece := p.(type) {
	case *Tower:
		if piece == nil || l.tower != nil || l.worker != nil {
			return false
		}
		l.tower = piece
		return true
	case *Worker:
		if piece == nil || piece.placed || l.worker != nil {
			return false
		}
		if piece.level != UnplacedLevel && l.Level() > piece.level+1 {
			return false
		}
		l.placeWorker(piece)
		return true
	default:
		return false
	}
}

// TryRemoveWorker takes w off the land if it is the worker standing here
func (l *Land) TryRemoveWorker(w *Worker) bool {
	if l.worker == nil || !l.worker.Is(w) {
		return false
	}
	removed := l.worker
	l.worker = nil
	removed.clearLand()
	return true
}

// TryDemolish reverses one build: a level 1 tower is removed, a taller one is lowered.
func (l *Land) TryDemolish() bool {
	if l.tower == nil || l.worker != nil {
		return false
	}
	if l.tower.Level() == 1 {
		l.tower = nil
		return true
	}
	l.tower.LowerLevel()
	return true
}

func (l *Land) placeWorker(w *Worker) {
	l.worker = w
	w.setLand(l)
}
