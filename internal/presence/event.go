package presence

import (
	"time"

	"workshop-app-be/internal/model"
)

type EventType string

const (
	EventUpdate EventType = "update"
	// EventLeave is terminal: the learner's record is removed.
	EventLeave EventType = "leave"
)

// Event is one normalized observation of a learner. It fully replaces
// whatever was known about that learner before.
type Event struct {
	Type      EventType
	Learner   model.Learner
	Location  *model.Location
	Timestamp time.Time
	Seq       uint64
}

// newerThan reports whether e should replace prev for the same learner.
// Sequence numbers win when both sides carry one; otherwise timestamps
// decide and a tie goes to the later arrival. A learner who left may come
// back with a fresh session whose sequence restarts, so after a leave a
// later timestamp is enough.
func (e Event) newerThan(prev Event) bool {
	bySeq := e.Seq > 0 && prev.Seq > 0
	if prev.Type == EventLeave {
		return (bySeq && e.Seq > prev.Seq) || !e.Timestamp.Before(prev.Timestamp)
	}
	if bySeq {
		return e.Seq > prev.Seq
	}
	return !e.Timestamp.Before(prev.Timestamp)
}
