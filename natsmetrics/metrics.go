// Package natsmetrics provides optional Prometheus instrumentation for a
// Client. A nil *Metrics is valid and every method on it is a no-op, so
// callers that don't want metrics can simply never construct one.
package natsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and gauges this client can report. Use New to
// register them against a prometheus.Registerer, or nil to disable
// instrumentation entirely.
type Metrics struct {
	messagesPublished prometheus.Counter
	messagesReceived  prometheus.Counter
	bytesPublished    prometheus.Counter
	bytesReceived     prometheus.Counter
	backpressureDrops prometheus.Counter
	subscriptions     prometheus.Gauge
}

// New registers natsio's metrics with reg and returns a handle to them.
// Pass prometheus.DefaultRegisterer for the global registry, or a
// prometheus.NewRegistry() for isolation in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "natsio_messages_published_total",
			Help: "Total number of messages published.",
		}),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "natsio_messages_received_total",
			Help: "Total number of messages delivered to subscriptions.",
		}),
		bytesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "natsio_bytes_published_total",
			Help: "Total number of payload bytes published.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "natsio_bytes_received_total",
			Help: "Total number of payload bytes delivered to subscriptions.",
		}),
		backpressureDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "natsio_backpressure_drops_total",
			Help: "Total number of Send calls rejected due to a full outbound queue.",
		}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "natsio_subscriptions_active",
			Help: "Number of subscriptions currently registered.",
		}),
	}
	collectors := []prometheus.Collector{
		m.messagesPublished, m.messagesReceived,
		m.bytesPublished, m.bytesReceived,
		m.backpressureDrops, m.subscriptions,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObservePublish(payloadLen int) {
	if m == nil {
		return
	}
	m.messagesPublished.Inc()
	m.bytesPublished.Add(float64(payloadLen))
}

func (m *Metrics) ObserveDelivery(payloadLen int) {
	if m == nil {
		return
	}
	m.messagesReceived.Inc()
	m.bytesReceived.Add(float64(payloadLen))
}

func (m *Metrics) ObserveBackpressureDrop() {
	if m == nil {
		return
	}
	m.backpressureDrops.Inc()
}

func (m *Metrics) SetActiveSubscriptions(n int) {
	if m == nil {
		return
	}
	m.subscriptions.Set(float64(n))
}
