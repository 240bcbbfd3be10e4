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

	"github.com/aryan0dhankhar/wellpulse/internal/featureflags"
	"github.com/aryan0dhankhar/wellpulse/internal/handler"
	"github.com/aryan0dhankhar/wellpulse/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/wellpulse/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/tracing"
	"github.com/aryan0dhankhar/wellpulse/internal/reliability/retry"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
	"github.com/aryan0dhankhar/wellpulse/internal/security/audit"
	"github.com/aryan0dhankhar/wellpulse/internal/security/auth"
	"github.com/aryan0dhankhar/wellpulse/internal/security/ratelimit"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
	"github.com/aryan0dhankhar/wellpulse/internal/worker"
	"github.com/aryan0dhankhar/wellpulse/pkg/config"
	"github.com/aryan0dhankhar/wellpulse/pkg/database"
)

const dashboardCacheTTL = 30 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting WellPulse server",
		slog.String("environment", cfg.Environment),
		slog.String("store", cfg.StoreBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "wellpulse", cfg.Environment)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
		shutdownTracing = func(context.Context) error { return nil }
	}

	// 4. Store
	checks := map[string]handler.Pinger{}
	var store *repository.Store
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "postgres_connect", func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, database.DefaultConfig(cfg.DatabaseURL), log)
		})
		if err != nil {
			log.Error("failed to connect to postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool.GetDB(), log); err != nil {
			log.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = repository.NewPostgresStore(pool.GetDB(), log)
		checks["postgres"] = handler.PingFunc(pool.Health)
	default:
		store = repository.NewMemoryStore()
	}

	if !featureflags.Enabled(featureflags.DisableSeed) {
		if err := seed(ctx, store, log); err != nil {
			log.Error("failed to seed store", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 5. Optional Redis for token revocation
	var revoker auth.Revoker
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		revoker = auth.NewRedisRevoker(redisClient, log)
		checks["redis"] = redisClient
	}

	// 6. Services
	hub := handler.NewNotificationHub(cfg.CORSAllowedOrigins, log)
	services := service.NewServices(store, hub, service.Config{Latency: cfg.MockLatency}, dashboardCacheTTL, log)
	authService := service.NewAuthService(
		auth.NewUserStore(),
		auth.NewTokenManager(cfg.JWTSecret, "wellpulse"),
		revoker,
		cfg.TokenTTL,
		log,
	)

	// 7. Security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	// 8. Router
	router := handler.NewRouter(handler.Deps{
		Auth:                authService,
		Companies:           services.Companies,
		Employees:           services.Employees,
		Questions:           services.Questions,
		Surveys:             services.Surveys,
		Reports:             services.Reports,
		Videos:              services.Videos,
		Gamification:        services.Gamification,
		Payments:            services.Payments,
		Settings:            services.Settings,
		Dashboard:           services.Dashboard,
		Notifications:       services.Notifications,
		Hub:                 hub,
		Authz:               security.NewAuthorizationService(log),
		Scope:               security.NewScopeService(log),
		Audit:               audit.NewLogger(log),
		Limiter:             rateLimiter,
		LoginAttemptsPerMin: cfg.LoginAttemptsPerMin,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		SanitizeInputs:      featureflags.Enabled(featureflags.SanitizeInputs),
		Health:              checks,
		Now:                 time.Now,
		Logger:              log,
	})

	// 9. Background workers
	if !featureflags.Enabled(featureflags.DisableWorkers) {
		go worker.NewLifecycleWorker(services.Surveys, services.Payments, cfg.LifecycleInterval, log).Start(ctx)
		go worker.NewReportWorker(services.Reports, cfg.ReportGenerationDelay, log).Start(ctx)
	}

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.Int("login_attempts_per_minute", cfg.LoginAttemptsPerMin),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// seed loads the demo fixtures into an empty store. A store that already
// holds companies is left alone so restarts keep user data.
func seed(ctx context.Context, store *repository.Store, log *slog.Logger) error {
	existing, err := store.Companies.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("store already populated, skipping seed", slog.Int("companies", len(existing)))
		return nil
	}
	if err := repository.Seed(ctx, store, time.Now()); err != nil {
		return err
	}
	log.Info("demo data seeded")
	return nil
}
