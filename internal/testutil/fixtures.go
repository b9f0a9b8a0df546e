package testutil

import (
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// Player names used by the fixtures. Blue places and moves first.
const (
	Blue  = "blue"
	White = "white"
)

// Levels maps a land to a tower height
type Levels map[core.Coordinate]int

// C is shorthand for core.NewCoordinate
func C(x, y int) core.Coordinate {
	return core.NewCoordinate(x, y)
}

// NewTestMatch creates a match with a silent logger and no event bus
func NewTestMatch() *game.Match {
	return game.NewMatch(game.MatchConfig{GameID: "test-match", Logger: NopLogger()})
}

// RegisteredMatch creates a match with Blue and White registered
func RegisteredMatch(t require.TestingT) *game.Match {
	m := NewTestMatch()
	require.NoError(t, m.AddPlayer(Blue))
	require.NoError(t, m.AddPlayer(White))
	return m
}

// PlacedMatch raises the given towers, then places Blue's workers at b1, b2
// and White's at w1, w2. Blue moves first.
func PlacedMatch(t require.TestingT, levels Levels, b1, b2, w1, w2 core.Coordinate) *game.Match {
	m := RegisteredMatch(t)
	for at, level := range levels {
		require.True(t, m.Island().SetLevel(at, level), "level %d at %s", level, at)
	}
	require.NoError(t, m.PlaceWorkers(Blue, core.PlaceWorkersCommand{WorkerOne: b1, WorkerTwo: b2}))
	require.NoError(t, m.PlaceWorkers(White, core.PlaceWorkersCommand{WorkerOne: w1, WorkerTwo: w2}))
	return m
}

// OpeningMatch is a placed match on flat ground with each player's workers in
// opposite corners.
func OpeningMatch(t require.TestingT) *game.Match {
	return PlacedMatch(t, nil, C(0, 0), C(4, 0), C(0, 4), C(4, 4))
}
