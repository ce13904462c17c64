// Package api exposes assessment sessions, results, guidance and reports over
// HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/p-n-ai/risk-snapshot/internal/ai"
	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/flow"
	"github.com/p-n-ai/risk-snapshot/internal/guidance"
	"github.com/p-n-ai/risk-snapshot/internal/questionbank"
	"github.com/p-n-ai/risk-snapshot/internal/report"
)

// Catalog lists the loaded tracks. *questionbank.Loader satisfies it.
type Catalog interface {
	AllTracks() []*assessment.Track
	Reference() questionbank.Reference
}

// GuidanceGenerator produces narrative guidance. *guidance.Generator
// satisfies it.
type GuidanceGenerator interface {
	Generate(ctx context.Context, req guidance.Request) string
	Stream(ctx context.Context, req guidance.Request) <-chan ai.StreamChunk
	IndustryInsights(industry string) (questionbank.IndustryInsight, bool)
}

// HealthChecker is a dependency probed by /readyz.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds HTTP settings.
type Config struct {
	RequestTimeout    time.Duration
	CORSOrigins       []string
	GuidancePerMinute int
	EmailPerMinute    int
}

// Deps are the collaborators behind the routes. Deliverer may be nil to
// disable email delivery.
type Deps struct {
	Catalog   Catalog
	Flow      *flow.Engine
	Guidance  GuidanceGenerator
	Deliverer report.Deliverer
	Metrics   *Metrics
	Checks    map[string]HealthChecker
}

// Server represents the HTTP API server
type Server struct {
	cfg       Config
	router    *chi.Mux
	catalog   Catalog
	flow      *flow.Engine
	guidance  GuidanceGenerator
	deliverer report.Deliverer
	metrics   *Metrics
	checks    map[string]HealthChecker

	// Generated guidance per session, reused by the email report.
	guidanceMu    sync.Mutex
	guidanceCache map[string]string
}

// NewServer creates a new API server
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	s := &Server{
		cfg:           cfg,
		catalog:       deps.Catalog,
		flow:          deps.Flow,
		guidance:      deps.Guidance,
		deliverer:     deps.Deliverer,
		metrics:       metrics,
		checks:        deps.Checks,
		guidanceCache: make(map[string]string),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	guidanceLimit := rateLimit(s.cfg.GuidancePerMinute)
	emailLimit := rateLimit(s.cfg.EmailPerMinute)

	r.Route("/api/v1", func(r chi.Router) {
		// The websocket stream outlives the request timeout.
		r.With(guidanceLimit).Get("/sessions/{id}/guidance/stream", s.handleGuidanceStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))

			r.Get("/tracks", s.handleListTracks)
			r.Get("/reference", s.handleReference)
			r.Get("/industries/{name}", s.handleIndustryInsight)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleStartSession)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Delete("/", s.handleRestartSession)
					r.Put("/answers/{qid}", s.handleAnswer)
					r.Post("/navigate", s.handleNavigate)
					r.Post("/save", s.handleSave)
					r.Post("/finish", s.handleFinish)
					r.Get("/result", s.handleResult)
					r.With(guidanceLimit).Get("/guidance", s.handleGuidance)
					r.Get("/report.xlsx", s.handleWorkbook)
					r.With(emailLimit).Post("/report/email", s.handleEmailReport)
				})
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := make(map[string]string, len(s.checks))
	ready := true
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "dependency", name, "error", err)
			status[name] = "unavailable"
			ready = false
			continue
		}
		status[name] = "ok"
	}

	if !ready {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "dependencies unavailable: "+failing(status))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"dependencies": status,
	})
}

func failing(status map[string]string) string {
	var out []string
	for name, st := range status {
		if st != "ok" {
			out = append(out, name)
		}
	}
	return strings.Join(out, ", ")
}
