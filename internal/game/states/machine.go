package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/santorini/internal/game/events"
)

// Transition represents a state transition in the history
type Transition struct {
	From      GamePhase
	To        GamePhase
	Timestamp time.Time
	Reason    string
}

// StateMachine follows a match through its phases. The match derives its
// phase from counts; the machine checks each change against the allowed
// transitions, keeps a bounded history and announces it on the event bus.
type StateMachine struct {
	mu             sync.RWMutex
	gameID         string
	currentPhase   GamePhase
	history        []Transition
	maxHistorySize int
	eventBus       *events.EventBus
	logger         zerolog.Logger
}

// NewStateMachine creates a state machine in PhaseRegistering. eventBus may be nil.
func NewStateMachine(gameID string, eventBus *events.EventBus, logger zerolog.Logger) *StateMachine {
	return &StateMachine{
		gameID:         gameID,
		currentPhase:   PhaseRegistering,
		maxHistorySize: 100,
		eventBus:       eventBus,
		logger:         logger.With().Str("component", "state_machine").Logger(),
	}
}

// CurrentPhase returns the current game phase
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase
func (sm *StateMachine) TransitionTo(targetPhase GamePhase, reason string) error {
	sm.mu.Lock()
	previousPhase := sm.currentPhase
	if !previousPhase.CanTransitionTo(targetPhase) {
		sm.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", previousPhase, targetPhase)
	}

	sm.addToHistory(Transition{
		From:      previousPhase,
		To:        targetPhase,
		Timestamp: time.Now(),
		Reason:    reason,
	})
	sm.currentPhase = targetPhase
	sm.mu.Unlock()

	if sm.eventBus != nil {
		sm.eventBus.Publish(events.NewStateTransitionEvent(
			sm.gameID,
			previousPhase.String(),
			targetPhase.String(),
			reason,
		))
	}

	sm.logger.Debug().
		Str("game_id", sm.gameID).
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Str("reason", reason).
		Msg("State transition completed")

	return nil
}

// Sync moves the machine to phase if it is not already there
func (sm *StateMachine) Sync(phase GamePhase, reason string) error {
	if sm.CurrentPhase() == phase {
		return nil
	}
	return sm.TransitionTo(phase, reason)
}

// addToHistory adds a transition to the history, maintaining max size
func (sm *StateMachine) addToHistory(transition Transition) {
	sm.history = append(sm.history, transition)

	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase.CanTransitionTo(targetPhase)
}

// Restore jumps straight to phase without recording a transition. It is used
// when a match is rebuilt from a snapshot.
func (sm *StateMachine) Restore(phase GamePhase) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.currentPhase = phase
	sm.history = sm.history[:0]
}
