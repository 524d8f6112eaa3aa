package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evolvespaces/evolve-backend/internal/audit"
	"github.com/evolvespaces/evolve-backend/internal/cron"
	"github.com/evolvespaces/evolve-backend/internal/grievances"
	"github.com/evolvespaces/evolve-backend/internal/inventory"
	"github.com/evolvespaces/evolve-backend/internal/locations"
	"github.com/evolvespaces/evolve-backend/internal/members"
	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/internal/payments"
	"github.com/evolvespaces/evolve-backend/internal/seats"
	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/internal/users"
	"github.com/evolvespaces/evolve-backend/internal/waitinglist"
	"github.com/evolvespaces/evolve-backend/pkg/config"
	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/evolvespaces/evolve-backend/pkg/metrics"
	"github.com/evolvespaces/evolve-backend/pkg/migrate"
	"github.com/evolvespaces/evolve-backend/pkg/redis"
)

const lockKeyFormat = "evolve:cron-worker:lock:%s"

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

	portalMetrics := metrics.NewPortalMetrics(prometheus.DefaultRegisterer)

	conn := dbClient.DB()
	subscriptionRepo := subscriptions.NewRepository(conn)
	notificationRepo := notifications.NewRepository(conn)
	paymentRepo := payments.NewRepository(conn)
	seatRepo := seats.NewRepository(conn)
	locationRepo := locations.NewRepository(conn)
	waitingListRepo := waitinglist.NewRepository(conn)
	grievanceRepo := grievances.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	userRepo := users.NewRepository(conn)

	sweeper, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:        subscriptionRepo,
		Seats:       seatRepo,
		Payments:    paymentRepo,
		WaitingList: waitingListRepo,
		Members:     members.NewRepository(conn),
		Audit:       audit.NewRecorder(conn),
		Tx:          dbClient,
		Logger:      logg,
		Metrics:     portalMetrics,
		Now:         func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	generator, err := notifications.NewGenerator(notifications.GeneratorParams{
		Repo:          notificationRepo,
		Sweeper:       sweeper,
		Subscriptions: subscriptionRepo,
		Payments:      paymentRepo,
		Seats:         seatRepo,
		Locations:     locationRepo,
		WaitingList:   waitingListRepo,
		Grievances:    grievanceRepo,
		Inventory:     inventoryRepo,
		Users:         userRepo,
		Logger:        logg,
		Metrics:       portalMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification generator", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewExpirySweepJob(cron.ExpirySweepJobParams{
		Logger:  logg,
		Sweeper: sweeper,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry sweep job", err)
		os.Exit(1)
	}

	generateJob, err := cron.NewNotificationGenerateJob(cron.NotificationGenerateJobParams{
		Logger:    logg,
		Generator: generator,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification generate job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notificationRepo,
		Retention:  cfg.Cron.NotificationRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(sweepJob, generateJob, cleanupJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
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
