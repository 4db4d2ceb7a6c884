package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/lumenweb/api/internal/di"
	"github.com/lumenweb/api/internal/handlers"
	"github.com/lumenweb/api/internal/platform/auth"
	"github.com/lumenweb/api/internal/platform/config"
	pfirestore "github.com/lumenweb/api/internal/platform/firestore"
	"github.com/lumenweb/api/internal/platform/geoip"
	"github.com/lumenweb/api/internal/platform/jobs"
	"github.com/lumenweb/api/internal/platform/observability"
	"github.com/lumenweb/api/internal/platform/secrets"
	"github.com/lumenweb/api/internal/repositories"
	firestoreRepo "github.com/lumenweb/api/internal/repositories/firestore"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("api")

	fetcher, err := secrets.NewFetcher(ctx, secrets.WithLogger(logger.Named("secrets")))
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}

	var containerOpts []di.Option
	containerOpts = append(containerOpts, di.WithLogger(logger))

	var extraChecks []repositories.DependencyCheck
	if cfg.Jobs.ProjectID != "" && cfg.Jobs.Topic != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Jobs.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		topic := pubsubClient.Topic(cfg.Jobs.Topic)
		publisher, err := jobs.NewPubSubNotificationPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise notification publisher", zap.Error(err))
		}
		containerOpts = append(containerOpts, di.WithNotificationPublisher(publisher))
		containerOpts = append(containerOpts, di.WithCloser(func(context.Context) error {
			topic.Stop()
			return pubsubClient.Close()
		}))
		extraChecks = append(extraChecks, repositories.DependencyCheck{
			Name:     "pubsub",
			Optional: true,
			Timeout:  1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				ok, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("topic %q does not exist", cfg.Jobs.Topic)
				}
				return nil
			},
		})
	} else {
		logger.Info("notification publishing disabled; jobs topic not configured")
	}

	if strings.TrimSpace(cfg.GeoIP.Endpoint) != "" {
		geoClient, err := geoip.NewClient(geoip.Deps{
			Endpoint: cfg.GeoIP.Endpoint,
			APIKey:   cfg.GeoIP.APIKey,
			Logger:   logger.Named("geoip"),
		})
		if err != nil {
			logger.Fatal("failed to initialise geoip client", zap.Error(err))
		}
		containerOpts = append(containerOpts, di.WithGeoIPResolver(geoClient))
	} else {
		logger.Info("geoip lookup disabled; currency resolution falls back to the default currency")
	}

	registry, err := firestoreRepo.NewRegistry(firestoreProvider, extraChecks...)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	container, err := di.NewContainer(ctx, cfg, registry, containerOpts...)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("container close error", zap.Error(err))
		}
	}()

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	svc := container.Services
	publicHandlers := handlers.NewPublicHandlers(svc.Catalogs, svc.Quotes, svc.Currency, svc.Content)
	meHandlers := handlers.NewMeHandlers(authenticator, svc.Users)
	projectHandlers := handlers.NewProjectHandlers(authenticator, svc.Projects)
	invoiceHandlers := handlers.NewInvoiceHandlers(authenticator, svc.Invoices)
	ticketHandlers := handlers.NewTicketHandlers(authenticator, svc.Tickets)
	adminHandlers := handlers.NewAdminHandlers(authenticator, svc.Catalogs, svc.Invoices)
	healthHandlers := handlers.NewHealthHandlers(svc.System)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoverMiddleware(),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithPublicRoutes(publicHandlers.Routes),
		handlers.WithMeRoutes(meHandlers.Routes),
		handlers.WithProjectRoutes(projectHandlers.Routes),
		handlers.WithInvoiceRoutes(invoiceHandlers.Routes),
		handlers.WithTicketRoutes(ticketHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("lumenweb api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
