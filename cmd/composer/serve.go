package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"github.com/tm-acme-shop/smartfold-composer/internal/clients"
	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/events"
	"github.com/tm-acme-shop/smartfold-composer/internal/handlers"
	"github.com/tm-acme-shop/smartfold-composer/internal/logging"
	"github.com/tm-acme-shop/smartfold-composer/internal/metrics"
	"github.com/tm-acme-shop/smartfold-composer/internal/repository"
	"github.com/tm-acme-shop/smartfold-composer/internal/server"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the composer HTTP service",
	Long: `Run the HTTP API. Configuration is read from the environment
(SERVER_PORT, STORAGE_BACKEND, EVENTS_BROKER, ...).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply Postgres migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Development); err != nil {
		return err
	}
	defer logging.Sync()

	logger := logging.New("main")
	logger.Info("Starting smartfold-composer",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("broker", cfg.Events.Broker),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	backend, closeStore, err := openStore(ctx, cfg, serveMigrate, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	store := repository.NewSafeStore(ctx, backend, logging.New("storage"))

	sink, closeSink, err := openSink(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	m := metrics.New()
	rates := service.DefaultRates()
	loc := cfg.Composer.Location()

	factory := func(sessionID string) *service.Composer {
		opts := []service.Option{
			service.WithSession(sessionID),
			service.WithRates(rates),
			service.WithDraftStore(repository.NewSnapshotRepository(store, sessionID, logging.New("snapshots"))),
			service.WithRecorder(m),
			service.WithLocation(loc),
			service.WithLogger(logging.New("composer")),
		}
		if sink != nil {
			opts = append(opts, service.WithSink(sink))
		}
		return service.NewComposer(opts...)
	}
	registry := service.NewRegistry(factory, m, logging.New("registry"))

	h := handlers.NewHandlers(registry, rates, store, cfg)

	var metricsHandler http.Handler
	if cfg.Features.EnableMetrics {
		metricsHandler = m.Handler()
	}
	srv := server.New(h, cfg, metricsHandler)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if cfg.Composer.SessionIdleTimeout > 0 {
		go registry.Sweep(ctx, cfg.Composer.SweepInterval, cfg.Composer.SessionIdleTimeout)
	}

	var fwd forwarder
	if cfg.Features.EnableForwarder {
		f, closeForwarder, err := openForwarder(cfg)
		if err != nil {
			return err
		}
		defer closeForwarder()
		fwd = f
	}
	if fwd != nil {
		go func() {
			if err := fwd.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Submission forwarder failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return err
	}

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if fwd != nil {
		fwd.Stop()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}

// openStore connects the configured snapshot backend. Connection failures
// are logged and leave the service without persistence.
func openStore(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (repository.Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case "memory", "":
		return repository.NewMemoryStore(), noop, nil

	case "redis":
		store := repository.NewRedisStore(cfg.Redis, logging.New("redis"))
		return store, func() { _ = store.Close() }, nil

	case "postgres":
		db, err := initDatabase(ctx, cfg)
		if err != nil {
			logger.Warn("Failed to connect to database", zap.Error(err))
			return nil, noop, nil
		}
		if migrate {
			if err := repository.RunMigrations(db, logging.New("migrate")); err != nil {
				_ = db.Close()
				return nil, noop, err
			}
		}
		return repository.NewPostgresStore(db, logging.New("postgres")), func() { _ = db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openSink connects the configured broker. A nil sink means submitted
// orders are only logged.
func openSink(cfg *config.Config, logger *zap.Logger) (service.SubmissionSink, func(), error) {
	noop := func() {}

	switch cfg.Events.Broker {
	case "none", "":
		logger.Warn("No event broker configured, submitted orders are not forwarded")
		return nil, noop, nil

	case "kafka":
		publisher := events.NewKafkaPublisher(cfg.Kafka, logging.New("kafka-publisher"))
		return publisher, func() { _ = publisher.Close() }, nil

	case "rabbitmq":
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect rabbitmq: %w", err)
		}
		publisher, err := events.NewRabbitPublisher(conn, cfg.RabbitMQ.Queue, logging.New("rabbit-publisher"))
		if err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return publisher, func() {
			_ = publisher.Close()
			_ = conn.Close()
		}, nil

	default:
		return nil, noop, fmt.Errorf("unknown event broker %q", cfg.Events.Broker)
	}
}

// forwarder relays submitted orders from the broker to the order API.
type forwarder interface {
	Start(ctx context.Context) error
	Stop()
}

// openForwarder builds the forwarder for the configured broker. The RabbitMQ
// forwarder consumes on its own connection.
func openForwarder(cfg *config.Config) (forwarder, func(), error) {
	noop := func() {}
	orders := clients.NewHTTPOrderClient(cfg.OrderAPI, logging.New("order-client"))

	switch cfg.Events.Broker {
	case "kafka":
		return events.NewKafkaForwarder(cfg.Kafka, orders, logging.New("forwarder")), noop, nil

	case "rabbitmq":
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect rabbitmq: %w", err)
		}
		f, err := events.NewRabbitForwarder(conn, cfg.RabbitMQ.Queue, cfg.RabbitMQ.ConsumerTag, orders, logging.New("forwarder"))
		if err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return f, func() { _ = conn.Close() }, nil

	default:
		logging.New("forwarder").Warn("Forwarder enabled without a broker", zap.String("broker", cfg.Events.Broker))
		return nil, noop, nil
	}
}

func initDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.New("database").Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)
	return db, nil
}
