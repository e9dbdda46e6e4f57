// Package metrics provides Prometheus metrics for the highlighter
package metrics

import (
	"net/http"
	"strconv"

	"pdf-highlighter/internal/hashrouter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics and implements the observers of the
// highlight store, the session controller and the hash router.
type Metrics struct {
	registry *prometheus.Registry

	HighlightsCreatedTotal prometheus.Counter
	HighlightUpdatesTotal  *prometheus.CounterVec
	HighlightsActive       prometheus.Gauge
	SessionSwitchesTotal   *prometheus.CounterVec
	HashNavigationsTotal   *prometheus.CounterVec
	ScreenshotsTotal       *prometheus.CounterVec
	HTTPRequestsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HighlightsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "highlighter_highlights_created_total",
			Help: "Total number of highlights created",
		}),
		HighlightUpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "highlighter_highlight_updates_total",
			Help: "Total number of highlight updates by result",
		}, []string{"result"}),
		HighlightsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "highlighter_highlights_active",
			Help: "Number of highlights in the active collection after the last reset",
		}),
		SessionSwitchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "highlighter_session_switches_total",
			Help: "Total number of document session switches by kind",
		}, []string{"kind"}),
		HashNavigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "highlighter_hash_navigations_total",
			Help: "Total number of fragment navigations by outcome",
		}, []string{"outcome"}),
		ScreenshotsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "highlighter_screenshots_total",
			Help: "Total number of area screenshots by status",
		}, []string{"status"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "highlighter_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "status"}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// HighlightCreated implements highlight.Observer.
func (m *Metrics) HighlightCreated() {
	m.HighlightsCreatedTotal.Inc()
	m.HighlightsActive.Inc()
}

// HighlightUpdated implements highlight.Observer.
func (m *Metrics) HighlightUpdated(found bool) {
	result := "hit"
	if !found {
		result = "miss"
	}
	m.HighlightUpdatesTotal.WithLabelValues(result).Inc()
}

// HighlightsReset implements highlight.Observer.
func (m *Metrics) HighlightsReset(size int) {
	m.HighlightsActive.Set(float64(size))
}

// SessionSwitched implements session.Observer.
func (m *Metrics) SessionSwitched(kind string, _ int) {
	m.SessionSwitchesTotal.WithLabelValues(kind).Inc()
}

// Navigated implements hashrouter.Observer.
func (m *Metrics) Navigated(outcome hashrouter.Outcome) {
	m.HashNavigationsTotal.WithLabelValues(string(outcome)).Inc()
}

// ScreenshotTaken records the result of an asynchronous screenshot.
func (m *Metrics) ScreenshotTaken(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ScreenshotsTotal.WithLabelValues(status).Inc()
}

// RecordRequest counts a served HTTP request.
func (m *Metrics) RecordRequest(method string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
