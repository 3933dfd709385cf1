// Package prometheus exposes crawl progress as Prometheus metrics.
package prometheus

import (
	"fmt"
	"net/http"

	"github.com/fwojciec/sitegraph/crawl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the crawl collectors. It is fed from crawl progress events
// and is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	pages         *prometheus.CounterVec
	responses     *prometheus.CounterVec
	links         prometheus.Counter
	queued        prometheus.Counter
	fetchDuration *prometheus.HistogramVec
	crawls        *prometheus.CounterVec
	crawlDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a dedicated
// registry along with the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegraph_pages_total",
			Help: "Processed URLs partitioned by outcome.",
		}, []string{"outcome"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegraph_responses_total",
			Help: "HTTP responses partitioned by status class.",
		}, []string{"status_class"}),
		links: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitegraph_links_total",
			Help: "In-scope links recorded as edges.",
		}),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitegraph_urls_queued_total",
			Help: "URLs newly admitted to the frontier from page links.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitegraph_fetch_duration_seconds",
			Help:    "Time to fetch and process one URL, partitioned by outcome.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"outcome"}),
		crawls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegraph_crawls_total",
			Help: "Finished crawls partitioned by result.",
		}, []string{"result"}),
		crawlDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitegraph_crawl_duration_seconds",
			Help:    "Wall time per finished crawl.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}

	for _, collector := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pages,
		m.responses,
		m.links,
		m.queued,
		m.fetchDuration,
		m.crawls,
		m.crawlDuration,
	} {
		if err := m.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// Observe updates the collectors from one progress event.
func (m *Metrics) Observe(e crawl.ProgressEvent) {
	if e.Type == crawl.ProgressFinished {
		result := "completed"
		if e.Error != nil {
			result = "canceled"
		}
		m.crawls.WithLabelValues(result).Inc()
		m.crawlDuration.Observe(e.Duration.Seconds())
		return
	}

	outcome := e.Type.String()
	m.pages.WithLabelValues(outcome).Inc()
	if e.StatusCode > 0 {
		m.responses.WithLabelValues(StatusClass(e.StatusCode)).Inc()
	}
	if e.Duration > 0 {
		m.fetchDuration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
	}
	m.links.Add(float64(e.Links))
	m.queued.Add(float64(e.Queued))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StatusClass buckets an HTTP status code as "2xx", "3xx", "4xx", "5xx" or
// "other".
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "other"
	}
}
