package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

var c = core.NewCoordinate

func newTestHandler() *Handler {
	return NewHandler(func(x, y int) (core.Coordinate, bool) {
		at := core.NewCoordinate(x/100, y/100)
		return at, at.IsValid()
	})
}

func testTurn(h *Handler) {
	h.StartTurn(
		map[int]core.Coordinate{1: c(0, 0), 2: c(4, 4)},
		[]core.MoveCommand{
			core.NewMoveCommand("blue", 1, c(1, 1), c(2, 2)),
			core.NewMoveCommand("blue", 1, c(1, 1), c(0, 0)),
			core.NewMoveCommand("blue", 1, c(0, 1), c(0, 2)),
		},
	)
}

func TestHandler_MoveSelection(t *testing.T) {
	h := newTestHandler()
	testTurn(h)
	assert.Equal(t, SelectionWorker, h.State())
	assert.Equal(t, []core.Coordinate{c(0, 0)}, h.Targets(), "worker 2 has no legal move")

	h.Click(c(4, 4))
	assert.Equal(t, SelectionWorker, h.State())
	assert.NotEmpty(t, h.GetLastValidationMessage())

	h.Click(c(0, 0))
	require.Equal(t, SelectionMove, h.State())
	selected, ok := h.Selected()
	require.True(t, ok)
	assert.Equal(t, c(0, 0), selected)
	assert.ElementsMatch(t, []core.Coordinate{c(1, 1), c(0, 1)}, h.Targets())

	h.Click(c(3, 3))
	assert.Equal(t, SelectionMove, h.State())
	assert.Equal(t, "Worker cannot move there", h.GetLastValidationMessage())

	h.Click(c(1, 1))
	require.Equal(t, SelectionBuild, h.State())
	assert.ElementsMatch(t, []core.Coordinate{c(2, 2), c(0, 0)}, h.Targets())

	_, ok = h.TakeMove()
	assert.False(t, ok)

	h.Click(c(0, 0))
	cmd, ok := h.TakeMove()
	require.True(t, ok)
	assert.Equal(t, core.NewMoveCommand("blue", 1, c(1, 1), c(0, 0)), cmd)
	assert.Equal(t, SelectionNone, h.State())

	_, ok = h.TakeMove()
	assert.False(t, ok, "a command is handed out once")
}

func TestHandler_CancelStepsBack(t *testing.T) {
	h := newTestHandler()
	testTurn(h)

	h.Click(c(0, 0))
	h.Click(c(1, 1))
	require.Equal(t, SelectionBuild, h.State())

	h.Cancel()
	assert.Equal(t, SelectionMove, h.State())
	h.Cancel()
	assert.Equal(t, SelectionWorker, h.State())

	h.Click(c(0, 0))
	h.Click(c(0, 0))
	assert.Equal(t, SelectionWorker, h.State(), "clicking the selected worker deselects it")

	h.Stop()
	assert.Equal(t, SelectionNone, h.State())
	assert.Empty(t, h.Targets())
}

func TestHandler_Placement(t *testing.T) {
	h := newTestHandler()
	h.StartPlacement([]core.Coordinate{c(0, 0), c(1, 1), c(2, 2)})
	assert.Equal(t, SelectionPlacing, h.State())

	h.Click(c(4, 4))
	assert.Equal(t, "Land is not free", h.GetLastValidationMessage())

	h.Click(c(1, 1))
	selected, ok := h.Selected()
	require.True(t, ok)
	assert.Equal(t, c(1, 1), selected)

	h.Click(c(1, 1))
	_, ok = h.Selected()
	assert.False(t, ok, "clicking the first land again clears it")

	h.Click(c(2, 2))
	h.Cancel()
	h.Click(c(0, 0))
	h.Click(c(2, 2))

	placement, ok := h.TakePlacement()
	require.True(t, ok)
	assert.Equal(t, core.PlaceWorkersCommand{WorkerOne: c(0, 0), WorkerTwo: c(2, 2)}, placement)
	assert.Equal(t, SelectionNone, h.State())
}

func TestSelectionState_String(t *testing.T) {
	assert.Equal(t, "waiting", SelectionNone.String())
	assert.Equal(t, "select a land to build on", SelectionBuild.String())
}
