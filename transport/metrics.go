package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures socket metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wacore").
	Namespace string
	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics counts frames, bytes and handshakes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	framesTotal       *prometheus.CounterVec
	bytesTotal        *prometheus.CounterVec
	handshakesTotal   *prometheus.CounterVec
	handshakeDuration prometheus.Histogram
	errorsTotal       *prometheus.CounterVec
}

// NewMetrics registers the socket metrics with config.Registry.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "wacore"
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "socket",
			Name:      "frames_total",
			Help:      "Frames sent and received",
		}, []string{"direction"}),

		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "socket",
			Name:      "bytes_total",
			Help:      "Frame bytes sent and received, after encryption",
		}, []string{"direction"}),

		handshakesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "socket",
			Name:      "handshakes_total",
			Help:      "Noise handshakes attempted, by result",
		}, []string{"result"}),

		handshakeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: "socket",
			Name:      "handshake_duration_seconds",
			Help:      "Time spent in the Noise handshake",
			Buckets:   prometheus.DefBuckets,
		}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: "socket",
			Name:      "errors_total",
			Help:      "Socket errors by operation",
		}, []string{"op"}),
	}
}

func (m *Metrics) frame(direction string, size int) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(direction).Inc()
	m.bytesTotal.WithLabelValues(direction).Add(float64(size))
}

func (m *Metrics) handshake(result string, seconds float64) {
	if m == nil {
		return
	}
	m.handshakesTotal.WithLabelValues(result).Inc()
	m.handshakeDuration.Observe(seconds)
}

func (m *Metrics) fail(op string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(op).Inc()
}
