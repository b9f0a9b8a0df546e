package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapCommandError(t *testing.T) {
	cmd := NewMoveCommand("alice", 1, Coordinate{0, 1}, Coordinate{0, 0})

	tests := []struct {
		name     string
		err      error
		expected string
		isNil    bool
	}{
		{
			name:  "nil error returns nil",
			err:   nil,
			isNil: true,
		},
		{
			name:     "illegal move",
			err:      ErrIllegalMove,
			expected: `player "alice" worker 1: move to (0,1) build at (0,0): illegal move`,
		},
		{
			name:     "game over",
			err:      ErrGameOver,
			expected: `player "alice" worker 1: move to (0,1) build at (0,0): game is over`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapCommandError(cmd, tt.err)
			if tt.isNil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestWrapPlacementError(t *testing.T) {
	assert.NoError(t, WrapPlacementError("bob", 2, Coordinate{3, 3}, nil))

	err := WrapPlacementError("bob", 2, Coordinate{3, 3}, ErrLandOccupied)
	require.Error(t, err)
	assert.Equal(t, `player "bob" worker 2: place at (3,3): land is occupied`, err.Error())
	assert.ErrorIs(t, err, ErrLandOccupied)
}
