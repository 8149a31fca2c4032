// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carterperez-dev/templates/moodflow/internal/admin"
	"github.com/carterperez-dev/templates/moodflow/internal/auth"
	"github.com/carterperez-dev/templates/moodflow/internal/config"
	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/entry"
	"github.com/carterperez-dev/templates/moodflow/internal/gateway"
	"github.com/carterperez-dev/templates/moodflow/internal/health"
	"github.com/carterperez-dev/templates/moodflow/internal/insight"
	"github.com/carterperez-dev/templates/moodflow/internal/middleware"
	"github.com/carterperez-dev/templates/moodflow/internal/premium"
	"github.com/carterperez-dev/templates/moodflow/internal/sentiment"
	"github.com/carterperez-dev/templates/moodflow/internal/server"
	"github.com/carterperez-dev/templates/moodflow/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	shutdownTracing, err := core.InitTracing(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("tracing initialized", "endpoint", cfg.Otel.Endpoint)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, db.DB)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, userSvc, cfg.Session.TTL)
	authHandler := auth.NewHandler(authSvc, auth.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	})

	sentimentClient := sentiment.NewClient(cfg.Sentiment, nil)
	insightClient := insight.NewClient(cfg.Insight, nil)
	gatewayClient := gateway.NewClient(cfg.Payment, nil)

	entryRepo := entry.NewRepository(db.DB)
	entrySvc := entry.NewService(entryRepo, sentimentClient, logger)
	entryHandler := entry.NewHandler(entrySvc)

	premiumSvc := premium.NewService(
		entryRepo,
		gatewayClient,
		insightClient,
		premium.Config{
			Amount:        cfg.Payment.Amount,
			Currency:      cfg.Payment.Currency,
			PublicURL:     cfg.Payment.PublicURL,
			WebhookSecret: cfg.Payment.WebhookSecret,
		},
		logger,
	)
	premiumHandler := premium.NewHandler(premiumSvc)

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db},
		health.Check{Name: "redis", Checker: redis, Optional: true},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Sessions:   authSvc,
		Users:      userSvc,
		Entries:    entryRepo,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.Per(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			BypassFunc: middleware.UnmeteredPath,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	authenticator := middleware.Authenticator(authSvc, cfg.Session.CookieName)
	credentialLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.Per(
				cfg.RateLimit.AuthRequests,
				cfg.RateLimit.AuthBurst,
				cfg.RateLimit.Window,
			),
			KeyFunc: middleware.KeyByIPAndEndpoint,
		},
	).Handler

	authHandler.RegisterRoutes(router, authenticator, credentialLimiter)
	entryHandler.RegisterRoutes(router, authenticator)
	premiumHandler.RegisterRoutes(router, authenticator)
	adminHandler.RegisterRoutes(router, middleware.RequireAdminToken(cfg.Admin.Token))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
