package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telepost/internal/analytics"
	"telepost/internal/api"
	"telepost/internal/chats"
	"telepost/internal/config"
	"telepost/internal/database"
	"telepost/internal/delivery"
	"telepost/internal/engagement"
	"telepost/internal/locales"
	"telepost/internal/observability"
	"telepost/internal/publisher"
	"telepost/pkg/telegoapi"

	sentry "github.com/getsentry/sentry-go"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load configuration
	cfg, warnings, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.Debug)
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("sentry.Init failed")
	}
	defer sentry.Flush(2 * time.Second)

	catalog, err := locales.New(cfg.DefaultLanguage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load locales")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, db, err := database.ConnectDB(connectCtx, cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err == nil {
		err = database.EnsureIndexes(connectCtx, db)
	}
	cancel()
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to initialize MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("error disconnecting from MongoDB")
			sentry.CaptureException(err)
			return
		}
		logger.Info().Msg("disconnected from MongoDB")
	}()

	// Stores
	contents := database.NewMongoContentRepository(db)
	credentials := database.NewMongoCredentialRepository(db)
	snapshots := database.NewMongoSnapshotRepository(db)
	publishLog := database.NewMongoPublishLogger(db)

	// Pipeline
	bots := telegoapi.NewTelegoFactory(cfg.TelegramAPIURL, cfg.Debug)
	resolver := chats.NewResolver(logger)
	dispatcher := delivery.NewDispatcher(
		delivery.NewLocalPathRewriter(cfg.PublicBaseURL, cfg.AssetPath),
		delivery.NewHTTPFetcher(cfg.MediaFetchTimeout, cfg.MediaMaxBytes),
		logger,
	)
	pub := publisher.New(bots, resolver, dispatcher, logger)
	estimator := engagement.NewEstimator(bots, resolver, logger)
	recorder := analytics.NewRecorder(snapshots, logger)
	collector := analytics.NewCollector(contents, credentials, estimator, recorder, cfg.CollectRatePerSecond, logger)

	srv, err := api.NewServer(api.Deps{
		Contents:    contents,
		Credentials: credentials,
		PublishLog:  publishLog,
		Publisher:   pub,
		Collector:   collector,
		History:     recorder,
		Catalog:     catalog,
		DB: observability.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}),
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create HTTP server")
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Publishing may upload media synchronously.
		WriteTimeout: cfg.MediaFetchTimeout + 60*time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("version", cfg.Version).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()

	logger.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	logger.Info().Msg("shutdown complete")
}
