package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/anuncios-backend/api/routes"
	"github.com/angelmondragon/anuncios-backend/internal/channels"
	"github.com/angelmondragon/anuncios-backend/internal/listings"
	"github.com/angelmondragon/anuncios-backend/internal/publications"
	"github.com/angelmondragon/anuncios-backend/pkg/config"
	"github.com/angelmondragon/anuncios-backend/pkg/db"
	"github.com/angelmondragon/anuncios-backend/pkg/instance"
	"github.com/angelmondragon/anuncios-backend/pkg/logger"
	"github.com/angelmondragon/anuncios-backend/pkg/metrics"
	"github.com/angelmondragon/anuncios-backend/pkg/migrate"
	"github.com/angelmondragon/anuncios-backend/pkg/outbox"
	"github.com/angelmondragon/anuncios-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

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
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		_ = dbClient.Close()
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	publicationMetrics := metrics.NewPublicationMetrics(reg)

	listingsRepo := listings.NewRepository(dbClient.DB())
	listingsService, err := listings.NewService(listingsRepo, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create listings service", err)
		return
	}

	adapters, err := channels.NewConfiguredRegistry(cfg)
	if err != nil {
		logg.Error(ctx, "failed to configure channel adapters", err)
		return
	}

	scheduler, err := channels.NewScheduler(dbClient, outbox.NewService(outbox.NewRepository(dbClient.DB()), logg))
	if err != nil {
		logg.Error(ctx, "failed to create publication scheduler", err)
		return
	}

	publicationsService, err := publications.NewService(publications.ServiceParams{
		Listings:       listingsRepo,
		Ledger:         publications.NewLedgerRepository(dbClient.DB()),
		Adapters:       adapters,
		Credentials:    channels.NewConfigCredentials(cfg),
		Scheduler:      scheduler,
		Counter:        redisClient,
		Metrics:        publicationMetrics,
		Logger:         logg,
		ChannelTimeout: cfg.Publishing.ChannelTimeout,
		ListingURL:     cfg.Publishing.ListingURL,
	})
	if err != nil {
		logg.Error(ctx, "failed to create publications service", err)
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":     addr,
		"instance": instance.GetID("local"),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			listingsService,
			publicationsService,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
		}
		return
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(logCtx, "api server shutdown failed", err)
	}
}
