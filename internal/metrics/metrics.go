package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mission_queries_total",
		Help: "Standard queries answered, by resolved intent",
	}, []string{"intent"})

	advanced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mission_advanced_queries_total",
		Help: "Advanced queries forwarded to the model, by outcome (ok/error/disabled)",
	}, []string{"outcome"})

	latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mission_query_duration_ms",
		Help:    "Time to answer a query in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"path"})

	historyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mission_history_append_failures_total",
		Help: "History writes that failed and were dropped",
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(queries, advanced, latency, historyFailures)
	})
}

// IncQuery counts a standard query by intent.
func IncQuery(intent string) {
	ensureRegistered()
	queries.WithLabelValues(intent).Inc()
}

// IncAdvanced counts an advanced query by outcome.
func IncAdvanced(outcome string) {
	ensureRegistered()
	advanced.WithLabelValues(outcome).Inc()
}

// ObserveQuery records how long a query on path took.
func ObserveQuery(path string, start time.Time) {
	ensureRegistered()
	latency.WithLabelValues(path).Observe(float64(time.Since(start).Milliseconds()))
}

// IncHistoryFailure counts a dropped history write.
func IncHistoryFailure() {
	ensureRegistered()
	historyFailures.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	ensureRegistered()
	return promhttp.Handler()
}
