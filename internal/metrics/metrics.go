// Package metrics exposes the service counters on a private registry.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "drystore"

type Metrics struct {
	registry *prometheus.Registry

	entriesSaved  prometheus.Counter
	filterQueries *prometheus.CounterVec
	exports       *prometheus.CounterVec
	logoFallbacks prometheus.Counter
	staleResults  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entriesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_saved_total",
			Help:      "Stock entries persisted.",
		}),
		filterQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_queries_total",
			Help:      "Filtered entry queries, by whether a mismatched counter predicate was dropped.",
		}, []string{"counter_dropped"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Report exports by format and outcome.",
		}, []string{"format", "outcome"}),
		logoFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logo_fallbacks_total",
			Help:      "PDF exports rendered without the logo.",
		}),
		staleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Query results discarded because a newer action or sign-out superseded them.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.entriesSaved,
		m.filterQueries,
		m.exports,
		m.logoFallbacks,
		m.staleResults,
	)
	return m
}

func (m *Metrics) EntrySaved() {
	if m == nil {
		return
	}
	m.entriesSaved.Inc()
}

func (m *Metrics) FilterQuery(counterDropped bool) {
	if m == nil {
		return
	}
	m.filterQueries.WithLabelValues(strconv.FormatBool(counterDropped)).Inc()
}

// Export outcome is "ok", "empty" or "error".
func (m *Metrics) Export(format, outcome string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, outcome).Inc()
}

func (m *Metrics) LogoFallback() {
	if m == nil {
		return
	}
	m.logoFallbacks.Inc()
}

func (m *Metrics) StaleResult() {
	if m == nil {
		return
	}
	m.staleResults.Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) }
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
