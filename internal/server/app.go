package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/database"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// App is the running service: the HTTP app plus the resources it owns.
type App struct {
	HTTP    *fiber.App
	closers []func() error
	log     *logrus.Logger
}

// Build opens the store, connects the optional event publisher and wires the
// service, handlers and routes. Call Shutdown to release everything.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{log: logger}

	repo, err := app.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var events *services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, logger)
		if err != nil {
			_ = app.close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		app.closers = append(app.closers, mq.Close)
		events = services.NewEventPublisher(mq, mq.Exchange())
	} else {
		logger.Info("RABBITMQ_URL is not set, product events are disabled")
	}

	productService := services.NewProductService(repo, services.NewValidator(), events, logger)
	productHandler := handlers.NewProductHandler(productService, logger)

	app.HTTP = New(Options{CORSAllowOrigins: cfg.CORSAllowOrigins}, productHandler, logger)
	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (repositories.ProductRepository, error) {
	if database.IsMemory(cfg.DatabaseURL) {
		a.log.Warn("Using in-memory product store; data is lost on exit")
		return repositories.NewMemoryProductRepository(), nil
	}

	db, err := database.Open(ctx, cfg.Database(), a.log, &models.Product{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	return repositories.NewGORMProductRepository(db), nil
}

// Listen serves HTTP on addr until Shutdown is called.
func (a *App) Listen(addr string) error {
	return a.HTTP.Listen(addr)
}

// Shutdown stops accepting requests, waits up to timeout for in-flight ones and
// then releases the event publisher and the store.
func (a *App) Shutdown(timeout time.Duration) error {
	var errs []error
	if a.HTTP != nil {
		if err := a.HTTP.ShutdownWithTimeout(timeout); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// close releases resources in reverse acquisition order.
func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
