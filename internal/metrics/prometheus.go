package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge

	authAttemptsTotal *prometheus.CounterVec

	proposalsTotal prometheus.Counter

	messagesAcceptedTotal prometheus.Counter
	messagesRejectedTotal *prometheus.CounterVec
	messageSizeBytes      prometheus.Histogram
	batchDurationSeconds  prometheus.Histogram
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "b2fd_connections_total",
			Help: "Total number of B2F connections opened.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "b2fd_connections_active",
			Help: "Number of currently active B2F connections.",
		}),

		authAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "b2fd_auth_attempts_total",
			Help: "Total number of login attempts.",
		}, []string{"result"}),

		proposalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "b2fd_proposals_total",
			Help: "Total number of inbound message proposals received.",
		}),

		messagesAcceptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "b2fd_messages_accepted_total",
			Help: "Total number of messages successfully received and stored.",
		}),
		messagesRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "b2fd_messages_rejected_total",
			Help: "Total number of messages rejected during transfer, by reason.",
		}, []string{"reason"}),
		messageSizeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "b2fd_message_size_bytes",
			Help:    "Size of accepted messages in bytes, after decompression.",
			Buckets: []float64{1024, 10240, 102400, 1048576, 10485760},
		}),
		batchDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "b2fd_batch_duration_seconds",
			Help:    "Wall-clock duration of a RECEIVING-state batch transfer.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.connectionsTotal,
		c.connectionsActive,
		c.authAttemptsTotal,
		c.proposalsTotal,
		c.messagesAcceptedTotal,
		c.messagesRejectedTotal,
		c.messageSizeBytes,
		c.batchDurationSeconds,
	)

	return c
}

// ConnectionOpened increments the connection counter and active gauge.
func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

// ConnectionClosed decrements the active connections gauge.
func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// AuthAttempt increments the login attempts counter.
func (c *PrometheusCollector) AuthAttempt(callsign string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttemptsTotal.WithLabelValues(result).Inc()
}

// ProposalReceived increments the proposal counter.
func (c *PrometheusCollector) ProposalReceived() {
	c.proposalsTotal.Inc()
}

// MessageAccepted increments the accepted-message counter and observes size.
func (c *PrometheusCollector) MessageAccepted(sizeBytes int64) {
	c.messagesAcceptedTotal.Inc()
	c.messageSizeBytes.Observe(float64(sizeBytes))
}

// MessageRejected increments the rejected-message counter for the given reason.
func (c *PrometheusCollector) MessageRejected(reason string) {
	c.messagesRejectedTotal.WithLabelValues(reason).Inc()
}

// BatchDuration observes the duration of a completed batch transfer.
func (c *PrometheusCollector) BatchDuration(seconds float64) {
	c.batchDurationSeconds.Observe(seconds)
}
