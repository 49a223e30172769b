package events

import (
	"strings"
	"time"
)

// SubjectPrefix is the root of every presence subject on the bus.
const SubjectPrefix = "presence"

// Presence event types, matching the "type" field of the wire message.
const (
	TypePresenceUpdate = "update"
	TypePresenceLeave  = "leave"
)

// Event defines the contract for events crossing the presence bus.
type Event interface {
	// EventType returns the kind of event (e.g., "update").
	EventType() string

	// Payload returns the raw JSON wire message.
	Payload() []byte

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries one raw presence wire message.
type BaseEvent struct {
	Type       string
	Data       []byte
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() []byte {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewPresenceEvent(eventType string, data []byte, at time.Time) BaseEvent {
	if eventType == "" {
		eventType = TypePresenceUpdate
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}

// Subject maps an event type to its bus subject, e.g. "presence.update".
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// TypeFromSubject is the inverse of Subject. Subjects outside the presence
// root are returned unchanged.
func TypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix+".")
}
