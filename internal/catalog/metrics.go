package catalog

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp     = "op"
	labelMethod = "method"
	labelStatus = "status"

	// statusTransport labels calls that never produced an HTTP status.
	statusTransport = "error"
)

// Metrics records per-operation request counts and latency for the catalog API.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_client_requests_total",
				Help: "Catalog API requests issued by the client",
			},
			[]string{labelOp, labelMethod, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "catalog_client_request_duration_seconds",
				Help: "Catalog API request latency",
			},
			[]string{labelOp, labelMethod},
		),
	}

	reg.MustRegister(m.Requests, m.Latency)
	return m
}

func (m *Metrics) observe(op, method string, status int, start time.Time) {
	if m == nil {
		return
	}
	label := statusTransport
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Latency.WithLabelValues(op, method).Observe(time.Since(start).Seconds())
	m.Requests.WithLabelValues(op, method, label).Inc()
}
