package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/retailerdir/internal/config"
	dbRedis "github.com/kailas-cloud/retailerdir/internal/db/redis"
	logpkg "github.com/kailas-cloud/retailerdir/internal/logger"
	"github.com/kailas-cloud/retailerdir/internal/metrics"
	"github.com/kailas-cloud/retailerdir/internal/observability"
	"github.com/kailas-cloud/retailerdir/internal/repository/memory"
	"github.com/kailas-cloud/retailerdir/internal/repository/postgis"
	retailerrepo "github.com/kailas-cloud/retailerdir/internal/repository/retailer"
	chiTransport "github.com/kailas-cloud/retailerdir/internal/transport/chi"
	healthuc "github.com/kailas-cloud/retailerdir/internal/usecase/health"
	retaileruc "github.com/kailas-cloud/retailerdir/internal/usecase/retailer"
	"github.com/kailas-cloud/retailerdir/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting retailerdir API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tracing, err := observability.Setup(ctx, observability.Config{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			logger.Fatal("Failed to set up tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				logger.Error("Tracing shutdown failed", zap.Error(err))
			}
		}()
		logger.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	// Register metrics explicitly (no init())
	metrics.Register()

	storage, err := openBackend(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage backend", zap.Error(err))
	}
	defer storage.closeFn()

	repo := retaileruc.NewInstrumentedRepository(storage.repo, cfg.Database.Driver)
	retailerSvc := retaileruc.New(repo, cfg.Search.DefaultPageSize).
		WithTimeout(cfg.Search.QueryTimeout()).
		WithLogger(logger)
	healthSvc := healthuc.New(storage.pinger, storage.index)

	server := chiTransport.NewServer(retailerSvc, healthSvc, logger, cfg.Search.MaxPageSize)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "Location"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r, chiTransport.JWTAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer))

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret is empty: POST /retailers is unauthenticated")
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// backend bundles the repository chosen by database.driver with its health probes.
type backend struct {
	repo    retaileruc.Repository
	pinger  healthuc.DBPinger
	index   healthuc.IndexChecker
	closeFn func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		repo := retailerrepo.New(store, cfg.Storage.KeyPrefix)
		if err := repo.EnsureIndex(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure index: %w", err)
		}
		logger.Info("Connected to Redis", zap.Strings("addrs", cfg.Database.Addrs))
		return &backend{repo: repo, pinger: store, index: repo, closeFn: store.Close}, nil

	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, readiness)
		defer cancel()
		pool, err := postgis.Connect(connectCtx, postgis.PoolConfig{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := postgis.New(pool)
		if err := repo.Migrate(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Connected to PostgreSQL")
		return &backend{repo: repo, pinger: pool, closeFn: pool.Close}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory storage: data is lost on restart")
		repo := memory.New()
		return &backend{repo: repo, pinger: repo, closeFn: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
