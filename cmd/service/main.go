// Package main is the entry point for the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/contact-form-service/internal/adapters/http"
	"github.com/jsamuelsen/contact-form-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/contact-form-service/internal/adapters/mail"
	"github.com/jsamuelsen/contact-form-service/internal/adapters/mongodb"
	"github.com/jsamuelsen/contact-form-service/internal/app"
	"github.com/jsamuelsen/contact-form-service/internal/platform/config"
	"github.com/jsamuelsen/contact-form-service/internal/platform/logging"
	"github.com/jsamuelsen/contact-form-service/internal/platform/telemetry"
	"github.com/jsamuelsen/contact-form-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load .env so MONGO_URI, EMAIL_USER and EMAIL_PASS can live beside the binary
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("mail_provider", cfg.Mail.Provider),
		slog.Bool("strict", cfg.Submission.Strict),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	metricsRegistry := telemetry.NewRegistry()
	healthRegistry := ports.NewHealthRegistry()

	// 5. Connect to the document store. A failed first ping is logged and the
	// service keeps running: submissions fail and readiness reports the store
	// until the driver reconnects.
	mongoClient, err := mongodb.Connect(ctx, &cfg.Mongo)
	if err != nil {
		logger.Error("mongodb connection failed", slog.Any("error", err))
	} else {
		logger.Info("connected to mongodb",
			slog.String("database", cfg.Mongo.Database),
			slog.String("collection", cfg.Mongo.Collection),
		)
	}

	repository := mongodb.NewRepository(mongoClient, &cfg.Mongo)
	if err := healthRegistry.Register(repository); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	// 6. Mail relay behind the circuit breaker, fed by the dispatcher
	notifier, err := mail.New(&cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}

	if cfg.Mail.Address() == "" {
		logger.Warn("no administrator address configured; notifications will fail")
	}

	dispatcher := app.NewDispatcher(app.DispatcherConfig{
		Notifier:    notifier,
		Workers:     cfg.Dispatch.Workers,
		QueueSize:   cfg.Dispatch.QueueSize,
		SendTimeout: cfg.Dispatch.SendTimeout,
		Registerer:  metricsRegistry,
		Logger:      logger,
	})
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("starting dispatcher: %w", err)
	}

	// 7. Application service and handlers
	submissionService := app.NewSubmissionService(app.SubmissionServiceConfig{
		Repository: repository,
		Queue:      dispatcher,
		Strict:     cfg.Submission.Strict,
		Logger:     logger,
	})

	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, telemetry.MetricsHandler(metricsRegistry))
	submissionHandler := handlers.NewSubmissionHandler(submissionService)

	// 8. HTTP server with middleware and routes
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:            logger,
		ServiceName:       cfg.Telemetry.ServiceName,
		Server:            &cfg.Server,
		CORS:              &cfg.CORS,
		HealthHandler:     healthHandler,
		SubmissionHandler: submissionHandler,
	})

	serverErr := server.Start()

	return waitForShutdown(ctx, logger, serverErr, cfg.Server.ShutdownTimeout,
		shutdownStep{"http server", server.Shutdown},
		shutdownStep{"notification dispatcher", dispatcher.Shutdown},
		shutdownStep{"mongodb", repository.Close},
		shutdownStep{"telemetry", telProvider.Shutdown},
	)
}

// shutdownStep is one component stopped during graceful shutdown.
type shutdownStep struct {
	name string
	stop func(context.Context) error
}

// waitForShutdown blocks until a shutdown signal is received or the server
// fails, then stops each step in order under one shared deadline. Later
// steps still run when an earlier one fails.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
	steps ...shutdownStep,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error

	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	errs := []error{runErr}

	for _, step := range steps {
		if err := step.stop(shutdownCtx); err != nil {
			logger.Error("shutdown step failed",
				slog.String("component", step.name),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%s shutdown: %w", step.name, err))
		}
	}

	logger.Info("shutdown complete")

	return errors.Join(errs...)
}
