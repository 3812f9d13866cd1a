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

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/config"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/logger"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/ratelimit"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/server"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load env if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Environment, cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(cfg, log); err != nil {
		log.Fatal("portal exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{Config: cfg, Logger: log}

	if cfg.Database.URL != "" {
		postgres, err := storage.NewPostgres(ctx, storage.PostgresConfig{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SlowQuery:       cfg.Database.SlowQuery,
			Debug:           cfg.Server.Debug,
		}, log)
		if err != nil {
			return err
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		deps.Postgres = postgres
		log.Info("connected to postgres")
	} else {
		log.Warn("DATABASE_URL not set, plan, checkout and dashboard endpoints are disabled")
	}

	if cfg.Redis.URL != "" {
		redis, err := storage.NewRedis(cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer redis.Close()

		deps.Redis = redis
		log.Info("connected to redis")
	}

	limiter, memory, err := ratelimit.NewLimiter(cfg.RateLimit.Backend, deps.Redis,
		ratelimit.WithSweepInterval(cfg.RateLimit.SweepInterval),
		ratelimit.WithLogger(log),
	)
	if err != nil {
		return err
	}
	deps.Limiter = limiter
	deps.MemoryLimiter = memory

	if memory != nil {
		memory.Start(ctx)
		defer memory.Stop()
	}
	log.Info("rate limiter ready", zap.String("backend", cfg.RateLimit.Backend))

	srv := server.New(deps)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
