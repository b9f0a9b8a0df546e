package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/states"
)

func TestMatch_Snapshot(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	require.NoError(t, m.ApplyMove(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))))

	snap := m.Snapshot()
	assert.Equal(t, "test-game", snap.GameID)
	assert.Equal(t, "Active", snap.Phase)
	assert.Equal(t, states.PhaseActive, snap.PhaseOf())
	require.Len(t, snap.Cells, core.CellCount)
	assert.Equal(t, 1, snap.Turn)
	assert.Equal(t, "bob", snap.NextPlayer)
	assert.Equal(t, "alice", snap.FirstPlacer)
	assert.Empty(t, snap.Winner)

	built, ok := snap.Cell(c(0, 0))
	require.True(t, ok)
	assert.Equal(t, CellSnapshot{Coordinate: c(0, 0), Level: 1}, built)

	occupied, ok := snap.Cell(c(0, 1))
	require.True(t, ok)
	assert.Equal(t, CellSnapshot{Coordinate: c(0, 1), Occupied: true, Player: "alice", Worker: 1}, occupied)

	_, ok = snap.Cell(c(5, 5))
	assert.False(t, ok)

	require.Len(t, snap.Players, 2)
	assert.Equal(t, "alice", snap.Players[0].Name)
	require.NotNil(t, snap.Players[0].Workers[0].Position)
	assert.Equal(t, c(0, 1), *snap.Players[0].Workers[0].Position)
	assert.Equal(t, "bob", snap.Opponent("ALICE"))
}

func TestSnapshot_JSONShape(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	require.NoError(t, m.ApplyMove(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))))

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "cells")
	assert.Contains(t, raw, "players")
	history := raw["history"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, map[string]any{
		"playerName":   "alice",
		"workerNumber": float64(1),
		"moveTo":       map[string]any{"x": float64(0), "y": float64(1)},
		"buildAt":      map[string]any{"x": float64(0), "y": float64(0)},
	}, history[0])
}

func TestRestore_RoundTrip(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	require.NoError(t, m.ApplyMove(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))))
	require.NoError(t, m.ApplyMove(core.NewMoveCommand("bob", 1, c(4, 3), c(4, 4))))

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored, err := Restore(snap, MatchConfig{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, m.ID(), restored.ID())
	assert.Equal(t, captureState(m), captureState(restored))
	assert.Equal(t, m.Snapshot(), restored.Snapshot())
	assert.Equal(t, "alice", restored.NextPlayer().Name())
}

func TestRestore_DuringPlacement(t *testing.T) {
	m := newTestMatch()
	require.NoError(t, m.AddPlayer("alice"))
	require.NoError(t, m.AddPlayer("bob"))
	require.NoError(t, m.AddWorker("bob", 1, 2, 2))

	restored, err := Restore(m.Snapshot(), MatchConfig{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, states.PhasePlacing, restored.Phase())
	assert.Equal(t, "bob", restored.NextPlayer().Name())
	assert.ErrorIs(t, restored.AddWorker("alice", 1, 0, 0), core.ErrNotPlacementTurn)
}

func TestRestore_Rejects(t *testing.T) {
	base := func() Snapshot {
		m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
		return m.Snapshot()
	}

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"missing cells", func(s *Snapshot) { s.Cells = s.Cells[:10] }},
		{"bad level", func(s *Snapshot) { s.Cells[7].Level = 9 }},
		{"duplicate coordinate", func(s *Snapshot) { s.Cells[7].Coordinate = s.Cells[8].Coordinate }},
		{"unknown occupant", func(s *Snapshot) { s.Cells[0].Player = "carol" }},
		{"worker twice", func(s *Snapshot) {
			s.Cells[2] = CellSnapshot{Coordinate: s.Cells[2].Coordinate, Occupied: true, Player: "alice", Worker: 1}
		}},
		{"three players", func(s *Snapshot) { s.Players = append(s.Players, PlayerSnapshot{Name: "carol"}) }},
		{"winner without a worker on level 3", func(s *Snapshot) { s.Winner = "bob" }},
		{"worker on level 3 without a winner", func(s *Snapshot) { s.Cells[0].Level = 3 }},
		{"placement out of order", func(s *Snapshot) {
			s.Cells[c(4, 4).Index()] = CellSnapshot{Coordinate: c(4, 4)}
			s.Cells[c(3, 3).Index()] = CellSnapshot{Coordinate: c(3, 3)}
			s.FirstPlacer = "bob"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base()
			tt.mutate(&snap)
			_, err := Restore(snap, MatchConfig{Logger: zerolog.Nop()})
			assert.Error(t, err)
		})
	}
}

func TestMatch_Clone_IsIndependent(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	clone := m.Clone()
	before := captureState(m)
	assert.Equal(t, m.Island().Hash(), clone.Island().Hash())

	require.NoError(t, clone.ApplyMove(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))))
	assert.Equal(t, before, captureState(m))
	assert.NotEqual(t, before, captureState(clone))
	assert.Equal(t, m.ID(), clone.ID())
}

func TestMatch_Render(t *testing.T) {
	m := newPlacedMatch(t, c(0, 0), c(1, 1), c(4, 4), c(3, 3))
	require.NoError(t, m.ApplyMove(core.NewMoveCommand("alice", 1, c(0, 1), c(0, 0))))

	out := m.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, core.BoardSize+3)
	assert.Contains(t, out, "=alice")
	assert.Contains(t, out, "=bob")
	assert.Contains(t, lines[2], "·A1", "alice's first worker stands on ground at (0,1)")
	assert.Contains(t, lines[1], " 1 ", "the tower left behind at (0,0)")
}
