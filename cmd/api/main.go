// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clergo/steago/internal/admin"
	"github.com/clergo/steago/internal/auth"
	"github.com/clergo/steago/internal/bootstrap"
	"github.com/clergo/steago/internal/config"
	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/health"
	"github.com/clergo/steago/internal/metrics"
	"github.com/clergo/steago/internal/middleware"
	"github.com/clergo/steago/internal/server"
	"github.com/clergo/steago/internal/user"
	"github.com/clergo/steago/internal/workspace"
)

const (
	drainDelay            = 5 * time.Second
	telemetryFlushTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file; env only when empty")
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

	logger := bootstrap.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var closers bootstrap.Closers
	defer closers.Close(logger)

	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			closers.Add("telemetry", func() error {
				flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
				defer cancel()
				return tel.Shutdown(flushCtx)
			})
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	closers.Add("database", db.Close)
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	closers.Add("redis", redis.Close)
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	if err := metrics.RegisterDBStats(db.DB.DB, cfg.App.Name); err != nil {
		logger.Warn("failed to register database metrics", "error", err)
	}
	if err := metrics.RegisterRedisStats(redis.PoolStats); err != nil {
		logger.Warn("failed to register redis metrics", "error", err)
	}

	registry, err := bootstrap.BindModels(ctx, db.DB, cfg.Models, logger)
	if err != nil {
		return err
	}

	blocklist := auth.NewBlocklist(redis.Client)

	jwtManager, err := auth.NewJWTManager(cfg.JWT, blocklist)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	if cfg.Platform.APIKey == "" {
		logger.Warn("platform api key not set; platform sign-in endpoints will refuse every request")
	}

	authSvc := auth.NewService(
		registry,
		jwtManager,
		blocklist,
		cfg.Platform.IsSuperAdminEmail,
	)
	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(registry)
	workspaceHandler := workspace.NewHandler(registry)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "models", Checker: health.ModelsReady(registry)},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Models:     registry,
	})

	limit := middleware.Limit(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Burst,
		cfg.RateLimit.Window,
	)

	global := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger(logger),
	}
	if cfg.RateLimit.Enabled {
		ipLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:      limit,
			Scope:      middleware.ScopeGlobal,
			FailOpen:   true,
			BypassFunc: middleware.BypassPaths("/healthz", "/livez", "/readyz", "/metrics"),
		})
		closers.Add("ip rate limiter", func() error {
			ipLimiter.Close()
			return nil
		})
		global = append(global, ipLimiter.Handler)
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		ServiceName:   cfg.Otel.ServiceName,
		Middlewares:   global,
	})

	router := srv.Router()

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	resolver := auth.NewResolver(registry)
	authenticator := middleware.Authenticator(jwtManager, resolver)
	optionalAuth := middleware.OptionalAuth(jwtManager, resolver)
	guard := chain(authenticator, middleware.RequireActive(registry))
	if cfg.RateLimit.Enabled {
		principalLimiter := middleware.NewRateLimiter(
			redis.Client,
			middleware.RateLimitConfig{
				Limit:    limit,
				Scope:    middleware.ScopePrincipal,
				KeyFunc:  middleware.KeyByPrincipal,
				FailOpen: true,
			},
		)
		closers.Add("principal rate limiter", func() error {
			principalLimiter.Close()
			return nil
		})
		guard = chain(guard, principalLimiter.Handler)
	}
	adminOnly := middleware.RequireSuperAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterPlatformRoutes(
			r,
			middleware.RequirePlatformKey(cfg.Platform.APIKey),
		)
		authHandler.RegisterRoutes(r, authenticator, optionalAuth)

		userHandler.RegisterRoutes(r, guard)
		workspaceHandler.RegisterRoutes(r, guard)

		userHandler.RegisterAdminRoutes(r, guard, adminOnly)
		workspaceHandler.RegisterAdminRoutes(r, guard, adminOnly)
		adminHandler.RegisterRoutes(r, guard, adminOnly)
	})

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

	logger.Info("application stopped")
	return nil
}

func chain(
	outer, inner func(http.Handler) http.Handler,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return outer(inner(next))
	}
}
