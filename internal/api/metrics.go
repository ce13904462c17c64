package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	sessionsStarted   *prometheus.CounterVec
	sessionsFinished  *prometheus.CounterVec
	sessionsRestarted *prometheus.CounterVec
	guidanceFallbacks *prometheus.CounterVec
	reportDeliveries  *prometheus.CounterVec
}

// NewMetrics registers every collector on reg. A nil reg gets a fresh
// registry so tests never collide on the global one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "risk_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"method", "route"},
		),
		sessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_sessions_started_total",
				Help: "Assessment sessions started, by track and whether saved progress was resumed",
			},
			[]string{"track", "resumed"},
		),
		sessionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_sessions_finished_total",
				Help: "Assessment sessions finished, by track and maturity level",
			},
			[]string{"track", "level"},
		),
		sessionsRestarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_sessions_restarted_total",
				Help: "Assessment sessions discarded by a restart",
			},
			[]string{"track"},
		),
		guidanceFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_guidance_fallbacks_total",
				Help: "Guidance requests answered with a fallback text, by reason",
			},
			[]string{"reason"},
		),
		reportDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_report_deliveries_total",
				Help: "Report email deliveries, by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.sessionsStarted,
		m.sessionsFinished,
		m.sessionsRestarted,
		m.guidanceFallbacks,
		m.reportDeliveries,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GuidanceFallback counts a fallback. It matches guidance.Config.OnFallback.
func (m *Metrics) GuidanceFallback(reason string) {
	m.guidanceFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) sessionStarted(track assessment.TrackID, resumed bool) {
	m.sessionsStarted.WithLabelValues(string(track), strconv.FormatBool(resumed)).Inc()
}

func (m *Metrics) sessionFinished(track assessment.TrackID, level assessment.Level) {
	m.sessionsFinished.WithLabelValues(string(track), string(level)).Inc()
}

func (m *Metrics) sessionRestarted(track assessment.TrackID) {
	m.sessionsRestarted.WithLabelValues(string(track)).Inc()
}

func (m *Metrics) reportDelivered(success bool) {
	outcome := "failed"
	if success {
		outcome = "delivered"
	}
	m.reportDeliveries.WithLabelValues(outcome).Inc()
}

// middleware records request counts and durations by route pattern.
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
