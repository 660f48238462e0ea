package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts realtime traffic. A nil *Metrics records nothing.
type Metrics struct {
	events  *prometheus.CounterVec
	clients prometheus.Gauge
}

// NewMetrics registers realtime collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodorder",
		Subsystem: "realtime",
		Name:      "events_total",
		Help:      "Total number of realtime events fanned out.",
	}, []string{"event"})
	clients := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "foodorder",
		Subsystem: "realtime",
		Name:      "connected_clients",
		Help:      "Number of connected websocket clients.",
	})

	reg.MustRegister(events, clients)

	return &Metrics{events: events, clients: clients}
}

func (m *Metrics) eventSent(event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event).Inc()
}

func (m *Metrics) clientConnected() {
	if m == nil {
		return
	}
	m.clients.Inc()
}

func (m *Metrics) clientDisconnected() {
	if m == nil {
		return
	}
	m.clients.Dec()
}

// EventsCounter returns the counter for one event name.
func (m *Metrics) EventsCounter(event string) prometheus.Counter {
	return m.events.WithLabelValues(event)
}
