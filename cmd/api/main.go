package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/hmendoza/prepflow-backend/api/routes"
	"github.com/hmendoza/prepflow-backend/internal/appointments"
	"github.com/hmendoza/prepflow-backend/internal/auth"
	"github.com/hmendoza/prepflow-backend/internal/branches"
	"github.com/hmendoza/prepflow-backend/internal/deliveries"
	"github.com/hmendoza/prepflow-backend/internal/profiles"
	"github.com/hmendoza/prepflow-backend/internal/users"
	"github.com/hmendoza/prepflow-backend/internal/vehicles"
	"github.com/hmendoza/prepflow-backend/pkg/auth/session"
	"github.com/hmendoza/prepflow-backend/pkg/config"
	"github.com/hmendoza/prepflow-backend/pkg/db"
	"github.com/hmendoza/prepflow-backend/pkg/logger"
	"github.com/hmendoza/prepflow-backend/pkg/metrics"
	"github.com/hmendoza/prepflow-backend/pkg/migrate"
	"github.com/hmendoza/prepflow-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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

	userRepo := users.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())
	branchRepo := branches.NewRepository(dbClient.DB())
	vehicleRepo := vehicles.NewRepository(dbClient.DB())
	appointmentRepo := appointments.NewRepository(dbClient.DB())
	deliveryRepo := deliveries.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, profileRepo, branchRepo, sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	branchService, err := branches.NewService(branchRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create branch service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	profileService, err := profiles.NewService(profileRepo, branchRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	vehicleService, err := vehicles.NewService(vehicleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicle service", err)
		os.Exit(1)
	}

	appointmentValidator, err := appointments.NewValidator(branchRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create appointment validator", err)
		os.Exit(1)
	}

	appointmentService, err := appointments.NewService(appointmentRepo, appointmentValidator)
	if err != nil {
		logg.Error(context.Background(), "failed to create appointment service", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(deliveryRepo, appointmentRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	requestMetrics := metrics.NewRequestMetrics()

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			requestMetrics,
			sessionManager,
			authService,
			branchService,
			userService,
			profileService,
			vehicleService,
			appointmentService,
			deliveryService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
