package presence

import (
	"sync"
	"testing"
	"time"

	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestDecodeEvent(t *testing.T) {
	v := validator.New()
	raw := []byte(`{
		"type": "update",
		"user": {"id": "kody", "name": "Kody", "avatarUrl": "/img/kody.png"},
		"location": {
			"exercise": {"exerciseNumber": 2, "stepNumber": 3, "type": "solution"},
			"origin": "https://www.epicweb.dev",
			"workshopTitle": "Web Forms"
		},
		"timestamp": 1709294400000,
		"seq": 7
	}`)

	ev, err := DecodeEvent(raw, v)
	require.NoError(t, err)
	assert.Equal(t, EventUpdate, ev.Type)
	assert.Equal(t, "kody", ev.Learner.ID)
	assert.Equal(t, "/img/kody.png", ev.Learner.AvatarURL)
	require.NotNil(t, ev.Location)
	assert.Equal(t, 3, ev.Location.Exercise.StepNumber)
	assert.Equal(t, "solution", ev.Location.Exercise.Type)
	assert.Equal(t, time.UnixMilli(1709294400000), ev.Timestamp)
	assert.Equal(t, uint64(7), ev.Seq)

	encoded, err := EncodeEvent(ev)
	require.NoError(t, err)
	again, err := DecodeEvent(encoded, v)
	require.NoError(t, err)
	assert.Equal(t, ev, again)
}

func TestDecodeEvent_Rejects(t *testing.T) {
	v := validator.New()
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{"user":`, ErrMalformedEvent},
		{"no user", `{"type":"update"}`, ErrMissingIdentity},
		{"blank id", `{"user":{"id":"   "}}`, ErrMissingIdentity},
		{"unknown type", `{"type":"teleport","user":{"id":"a"}}`, ErrMalformedEvent},
		{"negative exercise", `{"user":{"id":"a"},"location":{"exercise":{"exerciseNumber":-1}}}`, ErrMalformedEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.raw), v)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeEvent_Defaults(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"user":{"id":"a"},"location":{"exercise":{"exerciseNumber":0}}}`), validator.New())
	require.NoError(t, err)
	assert.Equal(t, EventUpdate, ev.Type)
	assert.True(t, ev.Timestamp.IsZero())
	require.NotNil(t, ev.Location)
	assert.Nil(t, ev.Location.Exercise, "exercise 0 is not a location")

	leave, err := DecodeEvent([]byte(`{"type":"leave","user":{"id":"a"}}`), validator.New())
	require.NoError(t, err)
	assert.Equal(t, EventLeave, leave.Type)
}

func TestIngress_AcceptDropsMalformedSilently(t *testing.T) {
	sink := &recordingSink{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	in := NewIngress(sink, logger.NewNop(), m)
	in.now = func() time.Time { return epoch }

	assert.False(t, in.Accept([]byte(`garbage`)))
	assert.False(t, in.Accept([]byte(`{"user":{}}`)))
	assert.True(t, in.Accept([]byte(`{"user":{"id":"a"}}`)))

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, epoch, events[0].Timestamp, "missing timestamps are stamped on arrival")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PresenceEvents.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PresenceEvents.WithLabelValues("accepted")))
}
