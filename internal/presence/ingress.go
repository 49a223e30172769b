package presence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/model"
	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingIdentity = errors.New("presence event has no learner identity")
	ErrMalformedEvent  = errors.New("malformed presence event")
)

// Sink receives normalized events from the ingress.
type Sink interface {
	Publish(ev Event)
}

// Ingress turns raw feed payloads into Events. Anything it cannot decode is
// dropped without affecting other learners.
type Ingress struct {
	sink     Sink
	validate *validator.Validate
	logger   logger.ILogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewIngress(sink Sink, log logger.ILogger, m *metrics.Metrics) *Ingress {
	return &Ingress{
		sink:     sink,
		validate: validator.New(),
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Accept decodes raw and forwards it to the sink. It reports whether the
// event was accepted.
func (i *Ingress) Accept(raw []byte) bool {
	ev, err := DecodeEvent(raw, i.validate)
	if err != nil {
		i.metrics.RecordPresenceEvent(false)
		i.logger.Debug("PresenceIngress", "Dropping presence event", map[string]interface{}{"error": err.Error()})
		return false
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = i.now()
	}
	i.metrics.RecordPresenceEvent(true)
	i.sink.Publish(ev)
	return true
}

// DecodeEvent parses and validates one wire message.
func DecodeEvent(raw []byte, v *validator.Validate) (Event, error) {
	var msg dto.PresenceEventMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if msg.User == nil || strings.TrimSpace(msg.User.ID) == "" {
		return Event{}, ErrMissingIdentity
	}
	if err := v.Struct(msg); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return fromMessage(msg), nil
}

func fromMessage(msg dto.PresenceEventMessage) Event {
	ev := Event{
		Type: EventUpdate,
		Learner: model.Learner{
			ID:        strings.TrimSpace(msg.User.ID),
			Name:      strings.TrimSpace(msg.User.Name),
			AvatarURL: strings.TrimSpace(msg.User.AvatarURL),
		},
		Seq: msg.Seq,
	}
	if msg.Type == string(EventLeave) {
		ev.Type = EventLeave
	}
	if msg.Timestamp > 0 {
		ev.Timestamp = time.UnixMilli(msg.Timestamp)
	}
	if loc := msg.Location; loc != nil {
		ev.Location = &model.Location{
			Origin:        loc.Origin,
			WorkshopTitle: loc.WorkshopTitle,
		}
		if ex := loc.Exercise; ex != nil && ex.ExerciseNumber > 0 {
			ev.Location.Exercise = &model.ExerciseLocation{
				ExerciseNumber: ex.ExerciseNumber,
				StepNumber:     ex.StepNumber,
				Type:           ex.Type,
			}
		}
	}
	return ev
}

// EncodeEvent is the inverse of DecodeEvent, used for fan-out to sockets and other instances.
func EncodeEvent(ev Event) ([]byte, error) {
	msg := dto.PresenceEventMessage{
		Type: string(ev.Type),
		User: &dto.PresenceUser{
			ID:        ev.Learner.ID,
			Name:      ev.Learner.Name,
			AvatarURL: ev.Learner.AvatarURL,
		},
		Seq: ev.Seq,
	}
	if !ev.Timestamp.IsZero() {
		msg.Timestamp = ev.Timestamp.UnixMilli()
	}
	if loc := ev.Location; loc != nil {
		msg.Location = &dto.PresenceLocation{Origin: loc.Origin, WorkshopTitle: loc.WorkshopTitle}
		if ex := loc.Exercise; ex != nil {
			msg.Location.Exercise = &dto.PresenceExercise{
				ExerciseNumber: ex.ExerciseNumber,
				StepNumber:     ex.StepNumber,
				Type:           ex.Type,
			}
		}
	}
	return json.Marshal(msg)
}
