package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jecaicedo27/toppingfrozen-backend/api/routes"
	authsvc "github.com/jecaicedo27/toppingfrozen-backend/internal/auth"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/carriers"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/messengers"
	metricssvc "github.com/jecaicedo27/toppingfrozen-backend/internal/metrics"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/pos"
	siigosvc "github.com/jecaicedo27/toppingfrozen-backend/internal/siigo"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/config"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/env"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	pkgmetrics "github.com/jecaicedo27/toppingfrozen-backend/pkg/metrics"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/migrate"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/redis"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/secrets"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/siigo"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/uploads"
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

	cipher, err := secrets.NewCipher(cfg.Secrets.EncryptionKey)
	if err != nil {
		logg.Error(context.Background(), "failed to load config encryption key", err)
		os.Exit(1)
	}
	secretStore, err := secrets.NewStore(dbClient.DB(), cipher)
	if err != nil {
		logg.Error(context.Background(), "failed to create secrets store", err)
		os.Exit(1)
	}

	saver, err := uploads.NewSaver(cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare uploads directory", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := pkgmetrics.NewHTTPMetrics(registry)
	siigoMetrics := pkgmetrics.NewSiigoMetrics(registry)
	jobMetrics := pkgmetrics.NewJobMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:  usersRepo,
		JWT:    cfg.JWT,
		Logger: logg,
	})
	exitOnError(logg, "auth service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:   ordersRepo,
		Logger: logg,
	})
	exitOnError(logg, "orders service", err)

	posService, err := pos.NewService(pos.ServiceParams{
		Orders: ordersRepo,
		Saver:  saver,
		Logger: logg,
	})
	exitOnError(logg, "pos service", err)

	messengerService, err := messengers.NewService(messengers.ServiceParams{
		Orders: ordersRepo,
		Users:  usersRepo,
		Saver:  saver,
		Logger: logg,
	})
	exitOnError(logg, "messenger service", err)

	reconciler, err := messengers.NewReconciler(dbClient.DB(), usersRepo, logg)
	exitOnError(logg, "messenger reconciler", err)

	metricsService, err := metricssvc.NewService(metricssvc.ServiceParams{
		Repo:   metricssvc.NewRepository(dbClient.DB()),
		Orders: ordersRepo,
		Logger: logg,
	})
	exitOnError(logg, "metrics service", err)

	carriersService, err := carriers.NewService(carriers.ServiceParams{
		Repo:   carriers.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	exitOnError(logg, "carriers service", err)

	credentialsSource, err := siigosvc.NewCredentialsSource(secretStore)
	exitOnError(logg, "siigo credentials source", err)

	siigoClient, err := siigo.NewClient(cfg.Siigo, credentialsSource, logg)
	exitOnError(logg, "siigo client", err)

	siigoAdmin, err := siigosvc.NewAdminService(siigosvc.AdminServiceParams{
		Store:  secretStore,
		Client: siigoClient,
		Logger: logg,
	})
	exitOnError(logg, "siigo admin service", err)

	siigoConsulta, err := siigosvc.NewConsultaService(siigosvc.ConsultaServiceParams{
		API:     siigoClient,
		Cache:   redisClient,
		Metrics: siigoMetrics,
		Logger:  logg,
	})
	exitOnError(logg, "siigo consulta service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:             cfg,
		Logger:             logg,
		DBPinger:           dbClient,
		RedisClient:        redisClient,
		AuthService:        authService,
		OrdersService:      ordersService,
		POSService:         posService,
		MessengerService:   messengerService,
		Reconciler:         reconciler,
		MetricsService:     metricsService,
		CarriersService:    carriersService,
		SiigoConsulta:      siigoConsulta,
		SiigoAdmin:         siigoAdmin,
		HTTPMetrics:        httpMetrics,
		JobMetrics:         jobMetrics,
		PrometheusRegistry: registry,
	})

	// Some hosts inject PORT directly; it wins over the configured port.
	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			_ = server.Close()
		}
	}
}

func exitOnError(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
