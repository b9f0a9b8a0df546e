package core

import "fmt"

// BoardSize is the width and height of the island.
const BoardSize = 5

// CellCount is the number of lands on the island.
const CellCount = BoardSize * BoardSize

// Coordinate represents a position on the island
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewCoordinate creates a new coordinate with the given x and y values.
// The result is not validated; use IsValid before trusting it.
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// CoordinateFromIndex creates a coordinate from a row-major land index
func CoordinateFromIndex(idx int) Coordinate {
	return Coordinate{
		X: idx % BoardSize,
		Y: idx / BoardSize,
	}
}

// IsValid checks if the coordinate lies on the island
func (c Coordinate) IsValid() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// Index converts the coordinate to a row-major land index
func (c Coordinate) Index() int {
	return c.Y*BoardSize + c.X
}

// ChebyshevDistance returns the king-move distance to another coordinate
func (c Coordinate) ChebyshevDistance(other Coordinate) int {
	dx := abs(c.X - other.X)
	dy := abs(c.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// IsAdjacentTo reports whether other is one of the eight surrounding cells.
// A coordinate is not adjacent to itself.
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return c.ChebyshevDistance(other) == 1
}

// neighborOffsets lists the eight surrounding cells, row by row.
var neighborOffsets = [8]Coordinate{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Neighbors returns the surrounding cells that lie on the island.
// Corners have three neighbors, edges five, inner cells eight.
func (c Coordinate) Neighbors() []Coordinate {
	out := make([]Coordinate, 0, len(neighborOffsets))
	for _, off := range neighborOffsets {
		n := Coordinate{X: c.X + off.X, Y: c.Y + off.Y}
		if n.IsValid() {
			out = append(out, n)
		}
	}
	return out
}

// Equal checks if two coordinates are equal
func (c Coordinate) Equal(other Coordinate) bool {
	return c.X == other.X && c.Y == other.Y
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
