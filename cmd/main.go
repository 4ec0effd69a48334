package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/controller"
	"loginsight-webhook/internal/database"
	"loginsight-webhook/internal/kafka"
	"loginsight-webhook/internal/metrics"
	"loginsight-webhook/internal/notifier"
	"loginsight-webhook/internal/parser"
	"loginsight-webhook/internal/repository"
	"loginsight-webhook/internal/service"
	"loginsight-webhook/internal/timescaledb"
)

func main() {
	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
			NewMetricsRegistry,
			NewMetricsCollector,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewAuditRepository,
			NewChatNotifier,
			kafka.NewEventPublisher,
		),
		// Domain
		fx.Provide(
			parser.NewEventNormalizer,
			service.NewAuthenticator,
			service.NewMessageRenderer,
			service.NewWebhookService,
			controller.NewWebhookController,
		),
		fx.Invoke(
			ConfigureLogger,
			RegisterAPIRoutes,
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 90*time.Second) // DB connect retries run during startup
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
	log.Info().Msg("Exiting.")
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func ConfigureLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Logging.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("level", level.String()).Str("format", cfg.Logging.Format).Msg("Logger configured")
}

func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewMetricsCollector(reg *prometheus.Registry) *metrics.Collector {
	return metrics.New(reg)
}

func NewGinEngine(cfg *config.Config) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	return controller.NewRouter(cfg.Server)
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	registry *prometheus.Registry,
	webhookController *controller.WebhookController,
) {
	controller.RegisterWebhookRoutes(router, webhookController)
	controller.RegisterHealthRoutes(router, registry)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Notifier.MaxElapsed + 30*time.Second, // chat send plus the audit write
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Factory Functions ---

// NewAuditRepository picks the audit sink from AUDIT_DRIVER.
func NewAuditRepository(lc fx.Lifecycle, cfg *config.Config) (repository.AuditRepository, error) {
	switch cfg.Audit.Driver {
	case "", "mysql":
		db, err := database.NewDB(lc, cfg)
		if err != nil {
			return nil, err
		}
		return database.NewAuditRepository(db), nil
	case "postgres":
		return timescaledb.ProvideAuditStore(lc, cfg)
	default:
		return nil, fmt.Errorf("unsupported AUDIT_DRIVER %q (want mysql or postgres)", cfg.Audit.Driver)
	}
}

func NewChatNotifier(cfg *config.Config) (notifier.ChatNotifier, error) {
	if cfg.Webhook.ChatID == "" {
		log.Warn().Msg("CHAT_ID is not set, every chat send will fail")
	}
	teams, err := notifier.NewTeamsNotifier(cfg.Graph)
	if err != nil {
		return nil, err
	}
	return notifier.NewRetryingNotifier(teams, cfg.Notifier), nil
}
