package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tpaukrt/DRAMConsole/internal/capture"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// Init registers the HTTP collectors.
func Init() {
	prometheus.MustRegister(requestCounter, latencyHistogram)
}

// RegisterCapture exposes the capture core's counters. The functions
// read the ring's internal totals, so the hot write path carries no
// metrics code of its own.
func RegisterCapture(ring *capture.Ring, snap *capture.Linear) {
	prometheus.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "dramconsole_capture_bytes_total",
			Help: "Bytes accepted by the capture ring",
		}, func() float64 {
			written, _ := ring.Stats()
			return float64(written)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "dramconsole_evicted_bytes_total",
			Help: "Bytes evicted from the capture ring",
		}, func() float64 {
			_, evicted := ring.Stats()
			return float64(evicted)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dramconsole_snapshot_bytes",
			Help: "Bytes held in the previous-cycle snapshot",
		}, func() float64 {
			return float64(snap.Len())
		}),
	)
}

// ObserveRequest records metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}
