// Package main is the entry point for the employee API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/employee-api/internal/auth"
	"github.com/vyrodovalexey/employee-api/internal/config"
	"github.com/vyrodovalexey/employee-api/internal/events"
	"github.com/vyrodovalexey/employee-api/internal/server"
	"github.com/vyrodovalexey/employee-api/internal/store"
	"github.com/vyrodovalexey/employee-api/internal/store/postgres"
	"github.com/vyrodovalexey/employee-api/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.String("build", version.String()),
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Bool("docs_enabled", cfg.DocsEnabled),
		zap.Bool("feed_enabled", cfg.FeedEnabled),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("kafka_enabled", cfg.KafkaEnabled()),
		zap.String("auth_mode", cfg.AuthMode),
	)

	var cleanup closers
	defer cleanup.run()

	ctx := context.Background()

	employeeStore, err := buildStore(ctx, cfg, logger, &cleanup)
	if err != nil {
		logger.Error("failed to initialize store", zap.Error(err))
		return 1
	}

	hub := events.NewHub()
	cleanup.add(hub.Close)

	publisher, err := buildPublisher(cfg, hub, logger, &cleanup)
	if err != nil {
		logger.Error("failed to initialize event publisher", zap.Error(err))
		return 1
	}

	authenticator, err := createAuthenticator(cfg, logger)
	if err != nil {
		logger.Error("failed to create authenticator", zap.Error(err))
		return 1
	}

	srv, err := server.New(cfg, logger, server.Deps{
		Store:         employeeStore,
		Publisher:     publisher,
		Hub:           hub,
		Authenticator: authenticator,
	})
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		return 1
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Graceful shutdown
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// closers releases resources in reverse order of acquisition.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// buildStore opens the configured backend, seeds it when asked and wraps
// it with metrics.
func buildStore(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	cleanup *closers,
) (store.Store, error) {
	var backend store.Store

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		cleanup.add(func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		})

		if cfg.PostgresAutoMigrate {
			if err := db.MigrateUp(ctx, 0); err != nil {
				return nil, fmt.Errorf("applying migrations: %w", err)
			}
			logger.Info("database migrations applied")
		}

		backend = postgres.NewEmployeeRepository(db)
		logger.Info("using postgres store")
	case config.StoreDriverMemory, "":
		backend = store.NewMemoryStore()
		logger.Info("using in-memory store")
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}

	if cfg.SeedDemoData {
		seeded, err := store.SeedIfEmpty(ctx, backend, store.DemoEmployees()...)
		if err != nil {
			return nil, err
		}
		if len(seeded) == 0 {
			logger.Info("store already holds employees, demo data not loaded")
		}
		for _, e := range seeded {
			logger.Info("preloading employee",
				zap.Int64("id", e.ID),
				zap.String("name", e.Name),
				zap.String("role", e.Role),
			)
		}
	}

	return store.NewInstrumentedStore(backend), nil
}

// buildPublisher fans events out to the in-process hub and, when brokers
// are configured, to Kafka. The server counts deliveries on top of the
// returned publisher.
func buildPublisher(
	cfg *config.Config,
	hub *events.Hub,
	logger *zap.Logger,
	cleanup *closers,
) (events.Publisher, error) {
	if !cfg.KafkaEnabled() {
		return hub, nil
	}

	kafka, err := events.DialKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() {
		if err := kafka.Close(); err != nil {
			logger.Warn("failed to close kafka publisher", zap.Error(err))
		}
	})

	logger.Info("publishing employee events to kafka",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
	)

	return events.NewMultiPublisher(hub, kafka), nil
}

// createAuthenticator creates an authenticator based on the config auth mode.
func createAuthenticator(
	cfg *config.Config,
	logger *zap.Logger,
) (auth.Authenticator, error) {
	authenticator, err := auth.New(auth.Settings{
		Method:     auth.AuthMethod(cfg.AuthMode),
		BasicUsers: cfg.BasicAuthUsers,
		APIKeys:    cfg.APIKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %q authenticator: %w", cfg.AuthMode, err)
	}

	if authenticator == nil {
		logger.Info("authentication disabled")
		return nil, nil
	}

	logger.Info("authentication enabled", zap.String("method", string(authenticator.Method())))
	return authenticator, nil
}
