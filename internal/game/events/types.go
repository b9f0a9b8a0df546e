package events

import (
	"time"
)

// Event is something that happened to one match
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
}

// BaseEvent carries the fields every match event shares. Concrete events
// embed it.
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }

// EventHandler receives the events of one type, see EventBus.SubscribeFunc
type EventHandler func(Event)

// Subscriber receives every event it is InterestedIn. ID must be unique on
// a bus; subscribing twice under one ID replaces the earlier subscriber.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// AllTypes lists every event type a match publishes
var AllTypes = []string{
	TypeGameCreated,
	TypePlayerJoined,
	TypeWorkerPlaced,
	TypeMoveApplied,
	TypeMoveRejected,
	TypeStateTransition,
	TypeGameEnded,
}
