package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sew4mi/sew4mi-backend/internal/cron"
	"github.com/sew4mi/sew4mi-backend/internal/milestones"
	"github.com/sew4mi/sew4mi-backend/internal/payments"
	"github.com/sew4mi/sew4mi-backend/pkg/config"
	"github.com/sew4mi/sew4mi-backend/pkg/db"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/metrics"
	"github.com/sew4mi/sew4mi-backend/pkg/migrate"
	"github.com/sew4mi/sew4mi-backend/pkg/momo"
	"github.com/sew4mi/sew4mi-backend/pkg/redis"
)

const lockKeyFormat = "s4m:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	momoClient, err := momo.NewClient(context.Background(), cfg.MoMo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create momo client", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		momoClient,
		logg,
		cfg.Payments.ReleaseRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	milestonesRepo := milestones.NewRepository(dbClient.DB())

	decisionLimiter, err := milestones.NewRedisRateLimiter(redisClient, cfg.DecisionRate.Limit, cfg.DecisionRate.Window)
	if err != nil {
		logg.Error(context.Background(), "failed to create decision rate limiter", err)
		os.Exit(1)
	}

	milestonesService, err := milestones.NewService(
		milestonesRepo,
		dbClient,
		decisionLimiter,
		paymentsService,
		logg,
		cfg.Payments.ReleaseTimeout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create milestones service", err)
		os.Exit(1)
	}

	autoApproveJob, err := cron.NewMilestoneAutoApproveJob(cron.MilestoneAutoApproveJobParams{
		Logger:    logg,
		Reader:    milestonesRepo,
		Approver:  milestonesService,
		BatchSize: cfg.Milestones.SweepBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auto-approve job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(autoApproveJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Milestones.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
