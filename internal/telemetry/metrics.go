// Package telemetry defines the Prometheus metrics shared by the client, backend, and catalog.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpDuration   *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	apiRequests    *prometheus.CounterVec
	searches       *prometheus.CounterVec
	events         *prometheus.CounterVec
	catalogTools   prometheus.Gauge
	catalogReloads *prometheus.CounterVec
}

// NewMetrics registers all metrics on registry. A nil registry uses a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		gatherer: registry,
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aidex_http_request_duration_seconds",
				Help:    "Duration of backend HTTP requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"route", "method", "status"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aidex_client_cache_lookups_total",
				Help: "Response cache lookups by the API client",
			},
			[]string{"result"},
		),
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aidex_client_requests_total",
				Help: "Network requests made by the API client",
			},
			[]string{"method", "outcome"},
		),
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aidex_searches_total",
				Help: "Full-text searches served, by match mode",
			},
			[]string{"mode"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aidex_events_total",
				Help: "Accepted submissions, subscriptions, and feedback",
			},
			[]string{"kind"},
		),
		catalogTools: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aidex_catalog_tools",
			Help: "Number of tools in the active catalog snapshot",
		}),
		catalogReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aidex_catalog_reloads_total",
				Help: "Catalog reload attempts",
			},
			[]string{"status"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveAPIRequest(method string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.apiRequests.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) ObserveSearch(fuzzy bool) {
	if m == nil {
		return
	}
	mode := "exact"
	if fuzzy {
		mode = "fuzzy"
	}
	m.searches.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveEvent(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogTools.Set(float64(n))
}

func (m *Metrics) ObserveCatalogReload(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.catalogReloads.WithLabelValues(status).Inc()
}
