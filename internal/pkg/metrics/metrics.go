package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the custom Prometheus collectors of the presence and coach
// pipelines. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Presence ingress outcomes, result: "accepted" or "dropped"
	PresenceEvents *prometheus.CounterVec

	// Learners currently known to the feed
	PresenceLearners prometheus.Gauge

	// Open presence SSE streams and sockets
	PresenceStreams prometheus.Gauge
	PresenceSockets prometheus.Gauge

	// Coach text streams by outcome: "started", "completed", "aborted"
	CoachStreams *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PresenceEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workshop_presence_events_total",
			Help: "Presence events seen by the ingress, by result",
		}, []string{"result"}),

		PresenceLearners: factory.NewGauge(prometheus.GaugeOpts{
			Name: "workshop_presence_learners",
			Help: "Learners with a live presence record in the feed",
		}),

		PresenceStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "workshop_presence_streams_active",
			Help: "Open presence SSE streams",
		}),

		PresenceSockets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "workshop_presence_sockets_active",
			Help: "Open presence WebSocket connections",
		}),

		CoachStreams: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workshop_coach_streams_total",
			Help: "Coach text streams by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordPresenceEvent(accepted bool) {
	if m == nil {
		return
	}
	result := "dropped"
	if accepted {
		result = "accepted"
	}
	m.PresenceEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) SetPresenceLearners(n int) {
	if m == nil {
		return
	}
	m.PresenceLearners.Set(float64(n))
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.PresenceStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.PresenceStreams.Dec()
}

func (m *Metrics) SocketOpened() {
	if m == nil {
		return
	}
	m.PresenceSockets.Inc()
}

func (m *Metrics) SocketClosed() {
	if m == nil {
		return
	}
	m.PresenceSockets.Dec()
}

func (m *Metrics) RecordCoachStream(outcome string) {
	if m == nil {
		return
	}
	m.CoachStreams.WithLabelValues(outcome).Inc()
}
