package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the query instrumentation of one server.
type metrics struct {
	registry *prometheus.Registry
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "queries_total",
			Help:      "Dataset queries by outcome.",
		}, []string{"dataset", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleetdesk",
			Name:      "query_duration_seconds",
			Help:      "Time spent loading, filtering and sorting a dataset.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dataset"}),
		rows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleetdesk",
			Name:      "rows_returned",
			Help:      "Rows matching the filters of a query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"dataset"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.queries,
		m.duration,
		m.rows,
	)
	return m
}

// observe records one finished query.
func (m *metrics) observe(dataset string, seconds float64, matched int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(dataset, status).Inc()
	if err != nil {
		return
	}
	m.duration.WithLabelValues(dataset).Observe(seconds)
	m.rows.WithLabelValues(dataset).Observe(float64(matched))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
