// cmd/server/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Afoxcute/sear/internal/cache"
	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/jobs"
	"github.com/Afoxcute/sear/internal/router"
	"github.com/Afoxcute/sear/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg())
		},
	}
}

func newPublisher(cfg config.KafkaConfig) (events.Publisher, error) {
	if !cfg.Enabled() {
		return events.NewLogPublisher(), nil
	}
	return events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}

func newGateway(cfg config.PaymentConfig) services.PaymentGateway {
	if cfg.StripeSecretKey == "" {
		logrus.Warn("STRIPE_SECRET_KEY not set, external payments disabled")
		return nil
	}
	return services.NewStripeGateway(cfg.StripeSecretKey)
}

func newMetadataResolver(cfg config.AWSConfig) (services.MetadataFetcher, *cache.BigCache) {
	fetcher, err := services.NewS3Fetcher(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Metadata resolution disabled")
		return nil, nil
	}
	metadataCache, err := services.NewMetadataCache(cfg.MetadataCacheTTL)
	if err != nil {
		logrus.WithError(err).Warn("Metadata cache disabled")
		return fetcher, nil
	}
	return fetcher, metadataCache
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openLedgerDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	publisher, err := newPublisher(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	fetcher, metadataCache := newMetadataResolver(cfg.AWS)
	if metadataCache != nil {
		defer metadataCache.Close()
	}

	ledger := database.NewLedger(db, publisher, time.Now)
	svc := router.NewServices(ledger, db, cfg, newGateway(cfg.Payment), fetcher, metadataCache)

	if cfg.Scheduler.Enabled {
		runner := jobs.NewRunner(cfg.Scheduler, svc.Licenses, svc.Arbitrators, svc.Disputes, svc.Admin)
		if err := runner.Start(); err != nil {
			return fmt.Errorf("failed to start background jobs: %w", err)
		}
		defer runner.Stop()
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Initialize(db, cfg, svc),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("Server exited")
	return nil
}
