package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	adapterOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lepidex",
		Name:      "adapter_outcomes_total",
		Help:      "Adapter lookups by source and outcome kind",
	}, []string{"source", "kind"})
	adapterDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lepidex",
		Name:      "adapter_duration_seconds",
		Help:      "Adapter lookup latency in seconds by source",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms up to ~25s
	}, []string{"source"})
	fetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lepidex",
		Name:      "fetch_attempts_total",
		Help:      "HTTP attempts by host and result (ok, retry, error)",
	}, []string{"host", "result"})
	queriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lepidex",
		Name:      "queries_total",
		Help:      "Species queries aggregated",
	})
)

// Register adds the collectors to the default Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(adapterOutcomes, adapterDuration, fetchAttempts, queriesTotal)
	})
}

// ObserveAdapter records one adapter lookup
func ObserveAdapter(source, kind string, d time.Duration) {
	adapterOutcomes.WithLabelValues(source, kind).Inc()
	adapterDuration.WithLabelValues(source).Observe(d.Seconds())
}

// IncFetchAttempt records one HTTP attempt
func IncFetchAttempt(host, result string) { fetchAttempts.WithLabelValues(host, result).Inc() }

// IncQueries records one aggregated query
func IncQueries() { queriesTotal.Inc() }

// WriteTextfile writes all registered metrics in the node-exporter textfile format
func WriteTextfile(path string) error {
	Register()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
