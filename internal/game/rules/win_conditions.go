package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// IsWinningLevel reports whether landing on level ends the game
func (wc *WinConditionChecker) IsWinningLevel(level int) bool {
	return level == core.WinningLevel
}

// CheckGameOver looks for a worker standing on the winning level.
// Returns (isGameOver, winnerName).
func (wc *WinConditionChecker) CheckGameOver(island *core.Island) (bool, string) {
	for _, w := range island.Workers() {
		if wc.IsWinningLevel(w.LandLevel()) {
			wc.logger.Debug().
				Str("winner", w.Player()).
				Int("worker", w.Number()).
				Msg("Winner determined")
			return true, w.Player()
		}
	}
	return false, ""
}
