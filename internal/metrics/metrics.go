// Package metrics holds the Prometheus collectors of the recorder process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meterlog"

// Metrics counts what happens on the control channel.
type Metrics struct {
	BatchesAppended      prometheus.Counter
	MeasurementsAppended prometheus.Counter
	AppendFailures       *prometheus.CounterVec
	AcksSent             prometheus.Counter
	AppendDuration       prometheus.Histogram
	SessionsActive       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// Registration panics if reg already holds collectors with the same names.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_appended_total",
			Help:      "Batches durably appended to the log.",
		}),
		MeasurementsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_appended_total",
			Help:      "Measurements durably appended to the log.",
		}),
		AppendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_failures_total",
			Help:      "Exchanges that ended without an acknowledgment, by reason.",
		}, []string{"reason"}),
		AcksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acks_sent_total",
			Help:      "Acknowledgments written to the monitor.",
		}),
		AppendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_seconds",
			Help:      "Time to persist a batch, including the file sync.",
			Buckets:   prometheus.DefBuckets,
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Monitor sessions currently open.",
		}),
	}
	reg.MustRegister(
		m.BatchesAppended,
		m.MeasurementsAppended,
		m.AppendFailures,
		m.AcksSent,
		m.AppendDuration,
		m.SessionsActive,
	)
	return m
}

// Failure reasons used as the "reason" label of AppendFailures.
const (
	ReasonProtocol    = "protocol"
	ReasonPersistence = "persistence"
	ReasonTransport   = "transport"
)

// ObserveAppend records a successful append of n measurements that took d.
func (m *Metrics) ObserveAppend(n int, d time.Duration) {
	m.BatchesAppended.Inc()
	m.MeasurementsAppended.Add(float64(n))
	m.AppendDuration.Observe(d.Seconds())
}

// ObserveFailure records an exchange that ended without acknowledgment.
func (m *Metrics) ObserveFailure(reason string) {
	m.AppendFailures.WithLabelValues(reason).Inc()
}
