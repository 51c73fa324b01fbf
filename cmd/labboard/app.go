package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"labboard/internal/config"
	"labboard/pkg/db"
	"labboard/pkg/logger"
	"labboard/pkg/otel"
	redisclient "labboard/pkg/redis"
)

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *pgxpool.Pool
	cleanup []func()
}

func newApp(ctx context.Context, opts *rootOptions, component string) (*app, error) {
	cfg, err := config.Load(opts.env, opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(cfg.Log.Level).With(
		zap.String("service", cfg.Service),
		zap.String("component", component),
	)
	a := &app{cfg: cfg, logger: log}
	a.cleanup = append(a.cleanup, func() { _ = log.Sync() })

	shutdownOtel, err := otel.Init(otel.Config{
		ServiceName:    cfg.Service + "-" + component,
		ServiceVersion: version,
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
		SampleRatio:    cfg.Otel.SampleRatio,
	}, log)
	if err != nil {
		log.Warn("OpenTelemetry init failed, tracing disabled", zap.Error(err))
	} else {
		a.cleanup = append(a.cleanup, shutdownOtel)
	}

	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("database: %w", err)
	}
	a.db = pool
	a.cleanup = append(a.cleanup, pool.Close)

	log.Info("Application initialized",
		zap.String("env", opts.env),
		zap.String("version", version),
	)
	return a, nil
}

func (a *app) redis(ctx context.Context) (*goredis.Client, error) {
	rdb, err := redisclient.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.cleanup = append(a.cleanup, func() { _ = rdb.Close() })
	return rdb, nil
}

// close runs cleanups in reverse order of registration.
func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}
