package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/warren/pkg/api"
	"github.com/platinummonkey/warren/pkg/config"
	"github.com/platinummonkey/warren/pkg/credentials"
	"github.com/platinummonkey/warren/pkg/middleware"
	"github.com/platinummonkey/warren/pkg/observability"
	"github.com/platinummonkey/warren/pkg/tenants"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	err = tenants.EnsureSchema(ctx, db)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("schema ensured")

	var metrics *observability.Metrics
	var registry *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	var cache *tenants.ViewCache
	if cfg.Cache.Enabled {
		cache, err = tenants.NewViewCache(cfg.Cache.RedisURL, cfg.Cache.TTL, metrics)
		if err != nil {
			return err
		}
		defer cache.Close()
		logger.Info("organization view cache enabled")
	}

	partitions := tenants.NewSchemaPartitionManager(db)
	repo := tenants.NewPostgresRepository(db, partitions, metrics)
	hasher := credentials.NewHasher(cfg.Auth.BCryptCost)
	issuer := credentials.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	service := tenants.NewLifecycleService(repo, hasher, issuer, logger, metrics, cache)
	authn := middleware.NewAuthenticator(issuer, repo)

	var redisClient *redis.Client
	if cache != nil {
		redisClient = cache.Client()
	}
	health := observability.NewHealthChecker(db, redisClient)

	server := api.NewServer(api.Options{
		Service:      service,
		Auth:         authn,
		Logger:       logger,
		Health:       health,
		Metrics:      metrics,
		Registry:     registry,
		StoreTimeout: cfg.Database.Timeout,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
