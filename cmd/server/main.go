// Package main is the entrypoint for the RescueAssist API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/ai/providers"
	"github.com/kiranshivaraju/rescueassist/internal/api"
	"github.com/kiranshivaraju/rescueassist/internal/api/handler"
	mw "github.com/kiranshivaraju/rescueassist/internal/api/middleware"
	"github.com/kiranshivaraju/rescueassist/internal/cache"
	"github.com/kiranshivaraju/rescueassist/internal/config"
	"github.com/kiranshivaraju/rescueassist/internal/flows"
	"github.com/kiranshivaraju/rescueassist/internal/mcp"
	"github.com/kiranshivaraju/rescueassist/internal/store"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

const shutdownTimeout = 30 * time.Second

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env, "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Job store
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	// 3. Cache for flow results and rate limiting
	c, closeCache, err := openCache(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	// 4. Model provider and flows
	provider, err := providers.New(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	svc, err := newFlowService(provider, c, cfg)
	if err != nil {
		return fmt.Errorf("build flows: %w", err)
	}

	// 5. Router
	router := api.NewRouter(newDependencies(st, c, provider, svc, cfg.RateLimit.PerMinute))

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Flow calls may run up to the inference timeout.
		WriteTimeout: cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openStore connects to PostgreSQL when DATABASE_URL is set and falls back to
// the in-memory demo store otherwise. Outside production the demo jobs and
// users are seeded into an empty database.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Database.URL == "" {
		slog.Info("DATABASE_URL not set, using in-memory demo store")
		return store.NewDemoStore(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	pg := store.NewPostgresStore(pool)
	if cfg.Server.Env != "production" {
		n, err := pg.Seed(ctx, store.DemoJobs(time.Now()), store.DemoUsers())
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
		slog.Info("demo data seeded", "inserted", n)
	}
	return pg, pool.Close, nil
}

// openCache connects to Redis when REDIS_URL is set and falls back to an
// in-process cache otherwise.
func openCache(ctx context.Context, cfg config.RedisConfig) (cache.Cache, func(), error) {
	if cfg.URL == "" {
		slog.Info("REDIS_URL not set, using in-process cache")
		return cache.NewMemoryCache(time.Minute), func() {}, nil
	}

	rc, err := cache.NewRedisCache(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")
	return rc, func() { rc.Close() }, nil
}

func newFlowService(provider models.ModelProvider, c cache.Cache, cfg *config.Config) (*flows.Service, error) {
	reg, err := flows.NewRegistry()
	if err != nil {
		return nil, err
	}
	iv := ai.NewInvoker(provider, reg, c, ai.Options{
		Timeout:       cfg.AI.InferenceTimeout,
		MaxRetries:    cfg.AI.MaxRetries,
		RetryInterval: cfg.AI.RetryInterval,
		CacheTTL:      cfg.AI.CacheTTL,
	})
	return flows.NewService(iv, flows.Pricing{
		StartFee:  cfg.Pricing.StartFee,
		CostPerKm: cfg.Pricing.CostPerKm,
	}), nil
}

func newDependencies(st store.Store, c cache.Cache, provider models.ModelProvider, svc *flows.Service, perMin int) api.Dependencies {
	return api.Dependencies{
		RateLimit: mw.NewRateLimit(c, perMin),

		HealthHandler: handler.NewHealthHandler(st, c, provider.Name()),

		ListFlows: handler.NewListFlowsHandler(svc),
		RunFlow:   handler.NewRunFlowHandler(svc),

		ListJobs:        handler.NewListJobsHandler(st, svc),
		GetJob:          handler.NewGetJobHandler(st),
		UpdateJob:       handler.NewUpdateJobHandler(st),
		AppendJobLog:    handler.NewAppendJobLogHandler(st),
		SuggestDriver:   handler.NewSuggestDriverHandler(st, svc),
		TripReport:      handler.NewTripReportHandler(st, svc),
		Receipt:         handler.NewReceiptHandler(st, svc),
		InsuranceReport: handler.NewInsuranceReportHandler(st, svc),
		Categorize:      handler.NewCategorizeHandler(st, svc),

		ListUsers:       handler.NewListUsersHandler(st),
		DashboardStats:  handler.NewDashboardStatsHandler(st),
		DashboardReport: handler.NewDashboardReportHandler(st, svc),
		MapMarkers:      handler.NewMapMarkersHandler(st),
		VehicleLookup:   handler.NewVehicleLookupHandler(),

		MCP: mcp.NewServer(svc, version).Handler(),
	}
}
