// Package monitoring records run metrics and summarizes run history.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

const namespace = "llmstxt"

// Metrics holds the Prometheus collectors for generate runs. Each instance
// owns its own registry so tests and repeated runs never collide.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	sitemaps      prometheus.Gauge
	urlsFound     prometheus.Gauge
	urlsFiltered  prometheus.Gauge
	pages         *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	runDuration   prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generate runs by final status.",
		}, []string{"status"}),
		sitemaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemaps_discovered",
			Help:      "Sitemaps discovered for the domain.",
		}),
		urlsFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "page_urls_found",
			Help:      "Unique page URLs resolved from all sitemaps.",
		}),
		urlsFiltered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "page_urls_filtered",
			Help:      "Page URLs dropped by include/exclude path filters.",
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Page retrievals by backend and result.",
		}, []string{"backend", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Latency of a single backend page retrieval.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"backend"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.registry.MustRegister(
		m.runs,
		m.sitemaps,
		m.urlsFound,
		m.urlsFiltered,
		m.pages,
		m.fetchDuration,
		m.runDuration,
		m.lastSuccess,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDiscovery records sitemap and URL counts.
func (m *Metrics) ObserveDiscovery(sitemaps, urlsFound, urlsFiltered int) {
	m.sitemaps.Set(float64(sitemaps))
	m.urlsFound.Set(float64(urlsFound))
	m.urlsFiltered.Set(float64(urlsFiltered))
}

// ObservePage records one page retrieval outcome.
func (m *Metrics) ObservePage(backend string, ok bool, elapsed time.Duration) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.pages.WithLabelValues(backend, result).Inc()
	m.fetchDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// ObserveRun records the final status of a run.
func (m *Metrics) ObserveRun(status string, elapsed time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Set(elapsed.Seconds())
	if status == "complete" {
		m.lastSuccess.SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "monitoring: write textfile %s", path)
	}
	return nil
}
