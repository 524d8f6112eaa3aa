package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evolvespaces/evolve-backend/api/routes"
	"github.com/evolvespaces/evolve-backend/internal/audit"
	"github.com/evolvespaces/evolve-backend/internal/auth"
	"github.com/evolvespaces/evolve-backend/internal/expenses"
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
	"github.com/evolvespaces/evolve-backend/pkg/auth/session"
	"github.com/evolvespaces/evolve-backend/pkg/config"
	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/evolvespaces/evolve-backend/pkg/metrics"
	"github.com/evolvespaces/evolve-backend/pkg/migrate"
	"github.com/evolvespaces/evolve-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	portalMetrics := metrics.NewPortalMetrics(prometheus.DefaultRegisterer)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	memberRepo := members.NewRepository(conn)
	locationRepo := locations.NewRepository(conn)
	seatRepo := seats.NewRepository(conn)
	subscriptionRepo := subscriptions.NewRepository(conn)
	paymentRepo := payments.NewRepository(conn)
	waitingListRepo := waitinglist.NewRepository(conn)
	grievanceRepo := grievances.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	notificationRepo := notifications.NewRepository(conn)
	auditRecorder := audit.NewRecorder(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	memberService, err := members.NewService(memberRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create members service", err)
		os.Exit(1)
	}

	locationService, err := locations.NewService(locationRepo, seatRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create locations service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:        subscriptionRepo,
		Seats:       seatRepo,
		Payments:    paymentRepo,
		WaitingList: waitingListRepo,
		Members:     memberRepo,
		Audit:       auditRecorder,
		Tx:          dbClient,
		Logger:      logg,
		Metrics:     portalMetrics,
		Now:         func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	waitingListService, err := waitinglist.NewService(waitingListRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create waiting list service", err)
		os.Exit(1)
	}

	grievanceService, err := grievances.NewService(grievanceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create grievances service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	expenseService, err := expenses.NewService(expenses.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create expenses service", err)
		os.Exit(1)
	}

	generator, err := notifications.NewGenerator(notifications.GeneratorParams{
		Repo:          notificationRepo,
		Sweeper:       subscriptionService,
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

	notificationService, err := notifications.NewService(notifications.ServiceParams{
		Repo:      notificationRepo,
		Generator: generator,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Register:      registerService,
			Members:       memberService,
			Locations:     locationService,
			Subscriptions: subscriptionService,
			WaitingList:   waitingListService,
			Notifications: notificationService,
			Grievances:    grievanceService,
			Inventory:     inventoryService,
			Expenses:      expenseService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
