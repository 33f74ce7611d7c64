package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storegoals-backend/api/routes"
	"github.com/angelmondragon/storegoals-backend/internal/auth"
	"github.com/angelmondragon/storegoals-backend/internal/dashboard"
	"github.com/angelmondragon/storegoals-backend/internal/goals"
	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/internal/sales"
	"github.com/angelmondragon/storegoals-backend/internal/stores"
	"github.com/angelmondragon/storegoals-backend/internal/users"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
	"github.com/angelmondragon/storegoals-backend/pkg/config"
	"github.com/angelmondragon/storegoals-backend/pkg/db"
	"github.com/angelmondragon/storegoals-backend/pkg/env"
	"github.com/angelmondragon/storegoals-backend/pkg/instance"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/metrics"
	"github.com/angelmondragon/storegoals-backend/pkg/migrate"
	"github.com/angelmondragon/storegoals-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	storage, err := session.NewRedisStorage(redisClient)
	if err != nil {
		return err
	}
	sessionManager, err := session.NewManager(storage, redisClient.AccessSessionKey, cfg.JWT)
	if err != nil {
		return err
	}

	resolver := periods.NewResolver(loc)
	periodService, err := periods.NewService(periods.ServiceParams{
		Resolver: resolver,
		Repo:     periods.NewRepository(dbClient.DB()),
		DB:       dbClient,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	userRepo := users.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Sessions:       sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Goals:        goals.NewRepository(dbClient.DB()),
		Sales:        salesRepo,
		Periods:      resolver,
		Cache:        redisClient,
		CacheTTL:     cfg.Dashboard.CacheTTL,
		Metrics:      metrics.NewDashboardMetrics(registry),
		Logger:       logg,
		FetchRetries: cfg.Dashboard.FetchRetries,
		HistoryLimit: cfg.Dashboard.HistoryLimit,
	})
	if err != nil {
		return err
	}

	salesService, err := sales.NewService(sales.ServiceParams{
		Repo:        salesRepo,
		Generations: redisClient,
		Location:    loc,
		Logger:      logg,
	})
	if err != nil {
		return err
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	storeService, err := stores.NewService(storeRepo)
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Auth:           authService,
		Periods:        periodService,
		Dashboard:      dashboardService,
		Sales:          salesService,
		Stores:         storeService,
		Users:          userService,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"timezone": loc.String(),
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
