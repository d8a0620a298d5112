package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecolocker/api"
	"ecolocker/cmd"
	httpin "ecolocker/internal/adapters/in/http"
	pgadapter "ecolocker/internal/adapters/out/postgres"
	redisout "ecolocker/internal/adapters/out/redis"
	"ecolocker/internal/observability"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := observability.NewLogger(os.Stdout, config.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, config, logger); err != nil {
		log.Fatalf("ecolocker stopped: %v", err)
	}
}

func run(ctx context.Context, config cmd.Config, logger *slog.Logger) error {
	shutdownOTel, err := observability.SetupOTel(ctx, config.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer shutdownWith(shutdownOTel, logger, "tracer provider")

	infra, closeInfra, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeInfra()

	if err = pgadapter.Migrate(ctx, infra.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, config, infra, logger)
	if err != nil {
		return fmt.Errorf("composition root: %w", err)
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("Closing publishers failed", "error", closeErr)
		}
	}()

	e, err := newWebServer(app)
	if err != nil {
		return err
	}
	consumer, err := app.CreateDepositConsumer()
	if err != nil {
		return fmt.Errorf("deposit consumer: %w", err)
	}
	jobManager := app.CreateJobManager()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "port", config.HTTPPort)
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); !errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})
	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		if startErr := jobManager.StartAll(gctx); startErr != nil {
			return startErr
		}
		<-gctx.Done()
		jobManager.StopAll()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newWebServer(app *cmd.CompositionRoot) (*echo.Echo, error) {
	validator, err := httpin.NewRequestValidator(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(), httpin.Tracing, httpin.Metrics)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	httpin.RegisterHandlers(e, app.CreateHTTPServer(), validator)
	return e, nil
}

func connect(ctx context.Context, config cmd.Config, logger *slog.Logger) (cmd.Infrastructure, func(), error) {
	var (
		infra   cmd.Infrastructure
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(what string, err error) (cmd.Infrastructure, func(), error) {
		closeAll()
		return cmd.Infrastructure{}, func() {}, fmt.Errorf("%s: %w", what, err)
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		return fail("postgres", err)
	}
	infra.DB = db
	closers = append(closers, func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})

	if config.RabbitURL == "" {
		return fail("rabbitmq", errors.New("RABBIT_URL is required"))
	}
	conn, err := amqp.Dial(config.RabbitURL)
	if err != nil {
		return fail("rabbitmq", err)
	}
	infra.Rabbit = conn
	closers = append(closers, func() { _ = conn.Close() })

	if config.RedisAddr != "" {
		client := redisout.New(config.RedisAddr)
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fail("redis", err)
		}
		infra.Redis = client
		closers = append(closers, func() { _ = client.Close() })
	} else {
		logger.Warn("REDIS_ADDR not set, every replica runs every sweep")
	}

	if config.MongoURI != "" {
		client, mongoErr := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI))
		if mongoErr != nil {
			return fail("mongo", mongoErr)
		}
		infra.Mongo = client.Database(config.MongoDatabase)
		closers = append(closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
	}

	return infra, closeAll, nil
}

func shutdownWith(fn func(context.Context) error, logger *slog.Logger, what string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("Shutdown failed", "component", what, "error", err)
	}
}
