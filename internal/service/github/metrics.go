package github

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sandevgo/hubgram/internal/core"
)

const (
	resultOK    = "ok"
	resultError = "error"

	// Event label for types without a route. The header value is client
	// controlled and must not become a label.
	eventUnknown = "unknown"
)

// Metrics is optional, a nil *Metrics records nothing.
type Metrics struct {
	events   *prometheus.CounterVec
	messages *prometheus.CounterVec
	logins   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: core.AppName,
			Name:      "github_events_total",
			Help:      "GitHub webhook events by type and handling result.",
		}, []string{"event", "result"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: core.AppName,
			Name:      "telegram_messages_total",
			Help:      "Fan-out messages by delivery result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: core.AppName,
			Name:      "github_logins_total",
			Help:      "Completed OAuth logins by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.events, m.messages, m.logins)
	return m
}

func (m *Metrics) event(label string, err error) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(label, result(err)).Inc()
}

func (m *Metrics) message(err error) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) login(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
