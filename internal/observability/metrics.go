package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "syfoh",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "syfoh",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	commandsParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "syfoh",
			Subsystem: "command",
			Name:      "parsed_total",
			Help:      "Command lines parsed, by outcome.",
		},
		[]string{"kind", "result"},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "syfoh",
			Subsystem: "frames",
			Name:      "sent_total",
			Help:      "Frames handed to a sink.",
		},
		[]string{"sink", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, commandsParsed, framesSent)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCommand counts one parsed line. kind is "write", "query" or the
// failure kind; result is "ok" or "rejected".
func RecordCommand(kind, result string) {
	RegisterMetrics()
	commandsParsed.WithLabelValues(kind, result).Inc()
}

func RecordFrameSent(sink string, success bool) {
	RegisterMetrics()
	framesSent.WithLabelValues(sink, strconv.FormatBool(success)).Inc()
}
