package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/shipcalc/internal/config"
	"github.com/noah-isme/shipcalc/internal/obs"
	"github.com/noah-isme/shipcalc/internal/refdata"
)

// TaskRefreshSnapshot reloads reference data from Postgres and re-primes the
// shared Redis cache that API instances read on startup.
const TaskRefreshSnapshot = "refdata:refresh"

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "shipcalc")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required for the refresh worker")
	}
	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required for the refresh worker")
	}

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient, redisOpt := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	loader := &refdata.Loader{
		Pool:   pool,
		Cache:  refdata.NewCache(redisClient, cfg.RefdataCacheTTL),
		Logger: logger,
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	spec := fmt.Sprintf("@every %s", cfg.RefdataRefreshInterval)
	if _, err := scheduler.Register(spec, asynq.NewTask(TaskRefreshSnapshot, nil)); err != nil {
		logger.Fatal().Err(err).Msg("register refresh schedule")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRefreshSnapshot, func(taskCtx context.Context, _ *asynq.Task) error {
		snap, err := loader.Reload(taskCtx)
		if err != nil {
			countReload("error")
			logger.Error().Err(err).Msg("refresh reference snapshot")
			return err
		}
		countReload("ok")
		logger.Info().
			Int("countries", len(snap.Countries)).
			Int("tiers", len(snap.Tiers)).
			Int("tax_rules", len(snap.TaxRules)).
			Msg("reference snapshot refreshed")
		return nil
	})

	server := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 1})

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		scheduler.Shutdown()
		server.Shutdown()
	}()

	logger.Info().Str("interval", cfg.RefdataRefreshInterval.String()).Msg("worker starting")
	if err := server.Run(mux); err != nil {
		logger.Error().Err(err).Msg("worker stopped with error")
		return
	}
	logger.Info().Msg("worker shutdown complete")
}

func countReload(result string) {
	if obs.SnapshotReloadsTotal != nil {
		obs.SnapshotReloadsTotal.WithLabelValues(result).Inc()
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "shipcalc-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, asynq.RedisClientOpt) {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient, asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
