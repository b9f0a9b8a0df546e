package events

import (
	"time"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// Event type constants
const (
	TypeGameCreated     = "game.created"
	TypeGameEnded       = "game.ended"
	TypePlayerJoined    = "player.joined"
	TypeWorkerPlaced    = "worker.placed"
	TypeMoveApplied     = "move.applied"
	TypeMoveRejected    = "move.rejected"
	TypeStateTransition = "state.transition"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// GameCreatedEvent is published when a match is constructed
type GameCreatedEvent struct {
	BaseEvent
}

// NewGameCreatedEvent creates a new GameCreatedEvent
func NewGameCreatedEvent(gameID string) *GameCreatedEvent {
	return &GameCreatedEvent{BaseEvent: newBase(TypeGameCreated, gameID)}
}

// PlayerJoinedEvent is published when a player registers
type PlayerJoinedEvent struct {
	BaseEvent
	PlayerName string `json:"player_name"`
	Seat       int    `json:"seat"`
}

// NewPlayerJoinedEvent creates a new PlayerJoinedEvent
func NewPlayerJoinedEvent(gameID, playerName string, seat int) *PlayerJoinedEvent {
	return &PlayerJoinedEvent{
		BaseEvent:  newBase(TypePlayerJoined, gameID),
		PlayerName: playerName,
		Seat:       seat,
	}
}

// WorkerPlacedEvent is published when a worker is put on the island
type WorkerPlacedEvent struct {
	BaseEvent
	Worker core.WorkerID   `json:"worker"`
	At     core.Coordinate `json:"at"`
	Placed int             `json:"placed"`
}

// NewWorkerPlacedEvent creates a new WorkerPlacedEvent. placed counts the
// workers on the island after this one.
func NewWorkerPlacedEvent(gameID string, worker core.WorkerID, at core.Coordinate, placed int) *WorkerPlacedEvent {
	return &WorkerPlacedEvent{
		BaseEvent: newBase(TypeWorkerPlaced, gameID),
		Worker:    worker,
		At:        at,
		Placed:    placed,
	}
}

// MoveAppliedEvent is published after a turn has been applied
type MoveAppliedEvent struct {
	BaseEvent
	Command core.MoveCommand `json:"command"`
	From    core.Coordinate  `json:"from"`
	Level   int              `json:"level"`
	Turn    int              `json:"turn"`
	Winning bool             `json:"winning"`
}

// NewMoveAppliedEvent creates a new MoveAppliedEvent
func NewMoveAppliedEvent(gameID string, cmd core.MoveCommand, from core.Coordinate, level, turn int, winning bool) *MoveAppliedEvent {
	return &MoveAppliedEvent{
		BaseEvent: newBase(TypeMoveApplied, gameID),
		Command:   cmd,
		From:      from,
		Level:     level,
		Turn:      turn,
		Winning:   winning,
	}
}

// MoveRejectedEvent is published when a submitted turn is refused
type MoveRejectedEvent struct {
	BaseEvent
	Command core.MoveCommand `json:"command"`
	Reason  string           `json:"reason"`
}

// NewMoveRejectedEvent creates a new MoveRejectedEvent
func NewMoveRejectedEvent(gameID string, cmd core.MoveCommand, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: newBase(TypeMoveRejected, gameID),
		Command:   cmd,
		Reason:    reason,
	}
}

// GameEndedEvent is published when a worker reaches the winning level
type GameEndedEvent struct {
	BaseEvent
	Winner   string        `json:"winner"`
	Turns    int           `json:"turns"`
	Duration time.Duration `json:"duration"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID, winner string, turns int, duration time.Duration) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		Turns:     turns,
		Duration:  duration,
	}
}

// StateTransitionEvent is published when the match moves between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
