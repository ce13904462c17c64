package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/risk-snapshot/internal/ai"
	"github.com/p-n-ai/risk-snapshot/internal/api"
	"github.com/p-n-ai/risk-snapshot/internal/assessment"
	"github.com/p-n-ai/risk-snapshot/internal/flow"
	"github.com/p-n-ai/risk-snapshot/internal/guidance"
	"github.com/p-n-ai/risk-snapshot/internal/platform/cache"
	"github.com/p-n-ai/risk-snapshot/internal/platform/config"
	"github.com/p-n-ai/risk-snapshot/internal/platform/database"
	"github.com/p-n-ai/risk-snapshot/internal/platform/sqlite"
	"github.com/p-n-ai/risk-snapshot/internal/progress"
	"github.com/p-n-ai/risk-snapshot/internal/questionbank"
	"github.com/p-n-ai/risk-snapshot/internal/report"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	loader, err := questionbank.NewLoader(cfg.QuestionBank.Dir, loaderOptions(cfg.QuestionBank)...)
	if err != nil {
		return err
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()
	checks := make(map[string]api.HealthChecker)

	backend, closeBackend, err := openProgress(ctx, cfg, checks)
	if err != nil {
		return err
	}
	closers = append(closers, closeBackend)

	store, err := progress.NewSnapshotStore(backend, loader)
	if err != nil {
		return err
	}

	var events flow.EventLogger = flow.NopEventLogger{}
	if cfg.Events.Enabled {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return fmt.Errorf("connecting event database: %w", err)
		}
		closers = append(closers, db.Close)
		if err := database.Migrate(ctx, db.Pool); err != nil {
			return err
		}
		events = flow.NewPostgresEventLogger(db.Pool)
		checks["events"] = db
		slog.Info("event logging enabled")
	}

	engine, err := flow.NewEngine(flow.Config{
		Tracks:      loader,
		Progress:    store,
		Events:      events,
		IdleTimeout: cfg.Session.IdleTimeout,
	})
	if err != nil {
		return err
	}

	metrics := api.NewMetrics(nil)

	var completer guidance.Completer
	if router := newAIRouter(cfg.AI); router.HasProvider() {
		completer = router
		slog.Info("guidance providers configured", "providers", router.Providers())
	} else {
		slog.Warn("no AI provider configured, guidance will use the fallback text")
	}
	gen := guidance.NewGenerator(guidance.Config{
		AI:         completer,
		Budget:     ai.NewInMemoryBudget(cfg.AI.TokenBudget, cfg.AI.BudgetWindow),
		Insights:   loader,
		MaxTokens:  cfg.AI.MaxTokens,
		Timeout:    cfg.AI.Timeout,
		OnFallback: metrics.GuidanceFallback,
	})

	var deliverer report.Deliverer
	if cfg.Delivery.URL != "" {
		deliverer = report.NewHTTPDeliverer(cfg.Delivery.URL,
			report.WithClient(&http.Client{Timeout: cfg.Delivery.Timeout}))
	} else {
		slog.Warn("report delivery URL not set, email reports are disabled")
	}

	srv := api.NewServer(api.Config{
		RequestTimeout:    cfg.Server.RequestTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		GuidancePerMinute: cfg.RateLimit.GuidancePerMinute,
		EmailPerMinute:    cfg.RateLimit.EmailPerMinute,
	}, api.Deps{
		Catalog:   loader,
		Flow:      engine,
		Guidance:  gen,
		Deliverer: deliverer,
		Metrics:   metrics,
		Checks:    checks,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "progress_backend", cfg.Progress.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// newLogger builds the process logger from the log settings. Validate has
// already rejected unknown levels and formats.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func loaderOptions(cfg config.QuestionBankConfig) []questionbank.Option {
	var opts []questionbank.Option
	overrides := map[assessment.TrackID]config.ScoringOverride{
		assessment.TrackExecutive: cfg.Executive,
		assessment.TrackNFP:       cfg.NFP,
	}
	for track, o := range overrides {
		if o.Classifier == "" && o.Denominator == "" {
			continue
		}
		opts = append(opts, questionbank.WithOverrides(track, questionbank.Overrides{
			Classifier:  o.Classifier,
			Denominator: o.Denominator,
		}))
	}
	return opts
}

// openProgress opens the configured progress backend and registers its
// readiness check. The returned func releases the backend.
func openProgress(ctx context.Context, cfg *config.Config, checks map[string]api.HealthChecker) (progress.Backend, func(), error) {
	switch cfg.Progress.Backend {
	case config.BackendMemory:
		slog.Warn("progress is kept in memory and is lost on restart")
		return progress.NewMemoryStore(), func() {}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		store, err := progress.NewSQLiteStore(ctx, db.DB)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		checks["progress"] = db
		return store, func() { db.Close() }, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting progress database: %w", err)
		}
		if err := database.Migrate(ctx, db.Pool); err != nil {
			db.Close()
			return nil, nil, err
		}
		store, err := progress.NewPostgresStore(db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		checks["progress"] = db
		return store, db.Close, nil

	case config.BackendRedis:
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting progress cache: %w", err)
		}
		store, err := progress.NewRedisStore(c, cfg.Progress.RedisTTL)
		if err != nil {
			c.Close()
			return nil, nil, err
		}
		checks["progress"] = c
		return store, func() { c.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown progress backend %q", cfg.Progress.Backend)
}

// newAIRouter registers every configured provider in fallback order. The
// self-hosted Ollama instance is tried last.
func newAIRouter(cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter()
	if cfg.Google.APIKey != "" {
		var opts []ai.GoogleOption
		if cfg.Google.Model != "" {
			opts = append(opts, ai.WithGoogleModel(cfg.Google.Model))
		}
		router.Register("google", ai.NewGoogleProvider(cfg.Google.APIKey, opts...))
	}
	if cfg.OpenAI.APIKey != "" {
		var opts []ai.OpenAIOption
		if cfg.OpenAI.Model != "" {
			opts = append(opts, ai.WithModel(cfg.OpenAI.Model))
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, ai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey, opts...))
	}
	if cfg.DeepSeek.APIKey != "" {
		var opts []ai.OpenAIOption
		if cfg.DeepSeek.Model != "" {
			opts = append(opts, ai.WithModel(cfg.DeepSeek.Model))
		}
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey, opts...))
	}
	if cfg.Anthropic.APIKey != "" {
		p, err := ai.NewAnthropicProvider(cfg.Anthropic.APIKey, ai.WithAnthropicModel(cfg.Anthropic.Model))
		if err != nil {
			slog.Warn("skipping anthropic provider", "error", err)
		} else {
			router.Register("anthropic", p)
		}
	}
	if cfg.OpenRouter.APIKey != "" {
		router.Register("openrouter", ai.NewOpenRouterProvider(cfg.OpenRouter.APIKey,
			ai.WithOpenRouterModel(cfg.OpenRouter.Model)))
	}
	if cfg.Ollama.Enabled && cfg.Ollama.URL != "" {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL, ai.WithOllamaModel(cfg.Ollama.Model)))
	}
	return router
}
