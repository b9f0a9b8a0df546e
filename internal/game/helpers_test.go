package game

import (
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

func c(x, y int) core.Coordinate { return core.NewCoordinate(x, y) }

func newTestMatch() *Match {
	return NewMatch(MatchConfig{GameID: "test-game", Logger: zerolog.Nop()})
}

// newPlacedMatch registers alice and bob and places alice's workers at a1, a2
// and bob's at b1, b2. Alice places first.
func newPlacedMatch(t require.TestingT, a1, a2, b1, b2 core.Coordinate) *Match {
	m := newTestMatch()
	require.NoError(t, m.AddPlayer("alice"))
	require.NoError(t, m.AddPlayer("bob"))
	require.NoError(t, m.PlaceWorkers("alice", core.PlaceWorkersCommand{WorkerOne: a1, WorkerTwo: a2}))
	require.NoError(t, m.PlaceWorkers("bob", core.PlaceWorkersCommand{WorkerOne: b1, WorkerTwo: b2}))
	return m
}

// boardState is everything a move can change, by value
type boardState struct {
	Cells   [core.CellCount]core.CellState
	Hash    uint64
	Levels  []int
	History []core.MoveCommand
	Winner  string
	Phase   string
}

func captureState(m *Match) boardState {
	s := boardState{
		Cells:   m.Island().Cells(),
		Hash:    m.Island().Hash(),
		History: m.History(),
		Phase:   m.Phase().String(),
	}
	for _, p := range m.Players() {
		for _, w := range p.Workers() {
			s.Levels = append(s.Levels, w.LandLevel())
		}
	}
	if w := m.Winner(); w != nil {
		s.Winner = w.Name()
	}
	return s
}
