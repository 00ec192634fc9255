package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/storelinkhq/storelink-backend/api/routes"
	"github.com/storelinkhq/storelink-backend/internal/credentials"
	"github.com/storelinkhq/storelink-backend/internal/insights"
	"github.com/storelinkhq/storelink-backend/internal/permissions"
	"github.com/storelinkhq/storelink-backend/internal/stores"
	"github.com/storelinkhq/storelink-backend/internal/syncengine"
	"github.com/storelinkhq/storelink-backend/pkg/config"
	"github.com/storelinkhq/storelink-backend/pkg/db"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/metrics"
	"github.com/storelinkhq/storelink-backend/pkg/migrate"
	"github.com/storelinkhq/storelink-backend/pkg/redis"
	"github.com/storelinkhq/storelink-backend/pkg/shopify"
	"github.com/storelinkhq/storelink-backend/pkg/vault"
)

const shutdownGrace = 15 * time.Second

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

	tokenVault, err := vault.New(cfg.Vault)
	if err != nil {
		logg.Error(context.Background(), "failed to create credential vault", err)
		os.Exit(1)
	}

	shopifyClient, err := shopify.NewClient(cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)
	permMetrics := metrics.NewPermissionMetrics(registry)

	credentialService, err := credentials.NewService(credentials.NewRepository(dbClient.DB()), tokenVault)
	if err != nil {
		logg.Error(context.Background(), "failed to create credential service", err)
		os.Exit(1)
	}

	storeRepo := stores.NewRepository(dbClient.DB())

	syncService, err := syncengine.NewService(
		storeRepo,
		syncengine.NewRepository(dbClient.DB()),
		credentialService,
		shopifyClient,
		syncMetrics,
		cfg.Sync.Timeout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync engine", err)
		os.Exit(1)
	}

	storeCache := stores.NewCache(redisClient, cfg.Redis.CacheTTL, logg)
	storeService, err := stores.NewService(storeRepo, credentialService, shopifyClient, syncService, dbClient, storeCache, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	permissionService, err := permissions.NewService(storeRepo, permissions.NewRepository(dbClient.DB()), permMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create permission validator", err)
		os.Exit(1)
	}

	insightService, err := insights.NewService(storeRepo, credentialService, shopifyClient, cfg.Sync.MetricsLimit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create insight engine", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			Stores:      storeService,
			Sync:        syncService,
			Permissions: permissionService,
			Insights:    insightService,
			Gatherer:    registry,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
