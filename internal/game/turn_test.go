package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/states"
)

func TestMatch_ApplyMove_MoveThenBuild(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))

	require.True(t, m.TryMoveWorker(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))))

	origin := m.Island().Land(c(0, 0))
	assert.True(t, origin.HasTower())
	assert.Equal(t, 1, origin.Level())
	assert.False(t, origin.HasWorker())

	dest := m.Island().Land(c(0, 1))
	require.True(t, dest.HasWorker())
	assert.Equal(t, core.WorkerID{Player: "alice", Number: 1}, dest.Worker().ID())

	assert.Equal(t, 1, m.Turn())
	assert.Equal(t, "bob", m.NextPlayer().Name())
	assert.False(t, m.GameIsOver())
}

func TestMatch_ApplyMove_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *Match)
		cmd     core.MoveCommand
		wantErr error
	}{
		{
			name:    "worker number zero",
			cmd:     core.NewMoveCommand("alice", 0, c(0, 1), c(0, 0)),
			wantErr: core.ErrInvalidWorkerNumber,
		},
		{
			name:    "build on destination",
			cmd:     core.NewMoveCommand("alice", 1, c(0, 1), c(0, 1)),
			wantErr: core.ErrBuildOnDestination,
		},
		{
			name:    "unknown player",
			cmd:     core.NewMoveCommand("carol", 1, c(0, 1), c(0, 0)),
			wantErr: core.ErrUnknownPlayer,
		},
		{
			name:    "occupied destination",
			cmd:     core.NewMoveCommand("alice", 1, c(1, 1), c(0, 0)),
			wantErr: core.ErrLandOccupied,
		},
		{
			name:    "two steps away",
			cmd:     core.NewMoveCommand("alice", 1, c(0, 2), c(0, 1)),
			wantErr: core.ErrIllegalMove,
		},
		{
			name:    "climb of two levels",
			setup:   func(m *Match) { m.Island().SetLevel(c(0, 1), 2) },
			cmd:     core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0)),
			wantErr: core.ErrIllegalMove,
		},
		{
			name:    "dome",
			setup:   func(m *Match) { m.Island().SetLevel(c(0, 1), 4) },
			cmd:     core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0)),
			wantErr: core.ErrLandOccupied,
		},
		{
			name:    "build not adjacent to destination",
			cmd:     core.NewMoveCommand("alice", 1, c(0, 1), c(2, 2)),
			wantErr: core.ErrIllegalBuild,
		},
		{
			name:    "build under another worker",
			cmd:     core.NewMoveCommand("alice", 1, c(1, 0), c(1, 1)),
			wantErr: core.ErrIllegalBuild,
		},
		{
			name:    "build on a dome",
			setup:   func(m *Match) { m.Island().SetLevel(c(2, 0), 4) },
			cmd:     core.NewMoveCommand("alice", 1, c(1, 0), c(2, 0)),
			wantErr: core.ErrIllegalBuild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
			if tt.setup != nil {
				tt.setup(m)
			}
			before := captureState(m)

			err := m.ApplyMove(tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, m.TryMoveWorker(tt.cmd))
			assert.Equal(t, before, captureState(m), "a rejected command must not change the match")
		})
	}
}

func TestMatch_ApplyMove_BeforePlacement(t *testing.T) {
	m := newTestMatch()
	require.NoError(t, m.AddPlayer("alice"))
	require.NoError(t, m.AddPlayer("bob"))
	require.NoError(t, m.AddWorker("alice", 1, 0, 0))

	err := m.ApplyMove(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0)))
	assert.ErrorIs(t, err, core.ErrWorkersNotPlaced)
	assert.Empty(t, m.LegalCommands("alice"))
	assert.False(t, m.HasLegalMove("alice"))
}

func TestMatch_ApplyMove_WinAfterThreeBuilds(t *testing.T) {
	m := newTestMatch()
	require.NoError(t, m.AddPlayer("alice"))
	require.NoError(t, m.AddPlayer("bob"))
	require.True(t, m.Island().SetLevel(c(0, 0), 2))
	require.NoError(t, m.PlaceWorkers("alice", core.PlaceWorkersCommand{WorkerOne: c(0, 0), WorkerTwo: c(2, 1)}))
	require.NoError(t, m.PlaceWorkers("bob", core.PlaceWorkersCommand{WorkerOne: c(4, 4), WorkerTwo: c(0, 4)}))

	turns := []core.MoveCommand{
		core.NewMoveCommand("alice", 2, c(2, 0), c(1, 0)),
		core.NewMoveCommand("bob", 1, c(4, 3), c(4, 4)),
		core.NewMoveCommand("alice", 2, c(2, 1), c(1, 0)),
		core.NewMoveCommand("bob", 1, c(4, 4), c(4, 3)),
		core.NewMoveCommand("alice", 2, c(2, 0), c(1, 0)),
		core.NewMoveCommand("bob", 1, c(4, 3), c(4, 4)),
	}
	for _, cmd := range turns {
		require.NoError(t, m.ApplyMove(cmd), "%s", cmd)
	}
	require.Equal(t, 3, m.Island().Land(c(1, 0)).Level())
	assert.False(t, m.GameIsOver())

	win := core.NewMoveCommand("alice", 1, c(1, 0), c(0, 0))
	require.NoError(t, m.ApplyMove(win))

	require.True(t, m.GameIsOver())
	assert.Equal(t, "alice", m.Winner().Name())
	assert.Equal(t, states.PhaseOver, m.Phase())
	assert.Equal(t, 2, m.Island().Land(c(0, 0)).Level(), "the build step is skipped on a winning move")
	assert.Equal(t, win, m.History()[len(m.History())-1])
	assert.Nil(t, m.NextPlayer())

	err := m.ApplyMove(core.NewMoveCommand("bob", 1, c(4, 3), c(4, 4)))
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.Empty(t, m.LegalCommands("bob"))
}

func TestMatch_UndoCommand(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	before := captureState(m)

	cmd := core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))
	require.NoError(t, m.ApplyMove(cmd))

	assert.ErrorIs(t, m.UndoCommand(core.NewMoveCommand("alice", 2, c(1, 2), c(1, 1)), c(1, 1)), core.ErrNotInHistory)
	assert.ErrorIs(t, m.UndoCommand(cmd, c(3, 3)), core.ErrIllegalMove)
	assert.ErrorIs(t, m.UndoCommand(cmd, c(9, 9)), core.ErrInvalidCoordinates)

	require.True(t, m.TryUndoCommand(cmd, c(0, 0)))
	assert.Equal(t, before, captureState(m))
	assert.False(t, m.TryUndoCommand(cmd, c(0, 0)), "history is empty")
}

func TestMatch_UndoCommand_RaisedTowerIsLowered(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	require.True(t, m.Island().SetLevel(c(0, 2), 2))
	before := captureState(m)

	cmd := core.NewMoveCommand("alice", 1, c(0, 1), c(0, 2))
	require.NoError(t, m.ApplyMove(cmd))
	assert.Equal(t, 3, m.Island().Land(c(0, 2)).Level())

	require.NoError(t, m.UndoCommand(cmd, c(0, 0)))
	assert.Equal(t, 2, m.Island().Land(c(0, 2)).Level())
	assert.Equal(t, before, captureState(m))
}

func TestMatch_UndoCommand_WinningMove(t *testing.T) {
	m := newTestMatch()
	require.NoError(t, m.AddPlayer("alice"))
	require.NoError(t, m.AddPlayer("bob"))
	require.True(t, m.Island().SetLevel(c(0, 0), 2))
	require.True(t, m.Island().SetLevel(c(1, 0), 3))
	require.NoError(t, m.PlaceWorkers("alice", core.PlaceWorkersCommand{WorkerOne: c(0, 0), WorkerTwo: c(2, 2)}))
	require.NoError(t, m.PlaceWorkers("bob", core.PlaceWorkersCommand{WorkerOne: c(4, 4), WorkerTwo: c(3, 3)}))
	before := captureState(m)

	win := core.NewMoveCommand("alice", 1, c(1, 0), c(0, 0))
	require.NoError(t, m.ApplyMove(win))
	require.True(t, m.GameIsOver())

	require.NoError(t, m.UndoCommand(win, c(0, 0)))
	assert.False(t, m.GameIsOver())
	assert.Equal(t, states.PhaseActive, m.Phase())
	assert.Equal(t, before, captureState(m))
	assert.Equal(t, 2, m.Player("alice").Worker(1).LandLevel())
}

type appliedMove struct {
	cmd    core.MoveCommand
	origin core.Coordinate
	before boardState
}

func TestMatch_MoveUndoRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cells := rapid.SliceOfNDistinct(rapid.IntRange(0, core.CellCount-1), 4, 4, rapid.ID[int]).Draw(rt, "placements")
		m := newPlacedMatch(rt,
			core.CoordinateFromIndex(cells[0]), core.CoordinateFromIndex(cells[1]),
			core.CoordinateFromIndex(cells[2]), core.CoordinateFromIndex(cells[3]))
		initial := captureState(m)

		var applied []appliedMove
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps && !m.GameIsOver(); i++ {
			next := m.NextPlayer()
			legal := m.LegalCommands(next.Name())
			if len(legal) == 0 {
				break
			}
			cmd := legal[rapid.IntRange(0, len(legal)-1).Draw(rt, "command")]
			origin, _ := m.Player(cmd.PlayerName).Worker(cmd.WorkerNumber).Position()
			before := captureState(m)

			require.NoError(rt, m.ApplyMove(cmd), "legal command rejected: %s", cmd)
			applied = append(applied, appliedMove{cmd: cmd, origin: origin, before: before})
		}

		for i := len(applied) - 1; i >= 0; i-- {
			require.NoError(rt, m.UndoCommand(applied[i].cmd, applied[i].origin))
			require.Equal(rt, applied[i].before, captureState(m))
		}
		require.Equal(rt, initial, captureState(m))
	})
}

func TestMatch_WinnerOnlyFromLanding(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := newPlacedMatch(rt, c(0, 0), c(4, 0), c(0, 4), c(4, 4))
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps && !m.GameIsOver(); i++ {
			legal := m.LegalCommands(m.NextPlayer().Name())
			if len(legal) == 0 {
				return
			}
			cmd := legal[rapid.IntRange(0, len(legal)-1).Draw(rt, "command")]
			landing := m.Island().Land(cmd.MoveTo).Level()
			require.NoError(rt, m.ApplyMove(cmd))
			require.Equal(rt, landing == core.WinningLevel, m.GameIsOver(), "%s", cmd)
		}
	})
}
