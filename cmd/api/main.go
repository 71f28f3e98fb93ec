package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sew4mi/sew4mi-backend/api/routes"
	"github.com/sew4mi/sew4mi-backend/internal/milestones"
	"github.com/sew4mi/sew4mi-backend/internal/orders"
	"github.com/sew4mi/sew4mi-backend/internal/payments"
	"github.com/sew4mi/sew4mi-backend/pkg/config"
	"github.com/sew4mi/sew4mi-backend/pkg/db"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/migrate"
	"github.com/sew4mi/sew4mi-backend/pkg/momo"
	"github.com/sew4mi/sew4mi-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		cfg.Milestones.ReviewWindow,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	decisionLimiter, err := milestones.NewRedisRateLimiter(redisClient, cfg.DecisionRate.Limit, cfg.DecisionRate.Window)
	if err != nil {
		logg.Error(context.Background(), "failed to create decision rate limiter", err)
		os.Exit(1)
	}

	milestonesService, err := milestones.NewService(
		milestones.NewRepository(dbClient.DB()),
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, ordersService, milestonesService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
