// Package server assembles the Fiber application and its dependencies.
package server

import (
	"errors"

	"catalog/internal/handlers"
	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Options holds transport settings.
type Options struct {
	CORSAllowOrigins string
}

// New builds the Fiber app with middleware, the health check and the product routes.
func New(opts Options, products *handlers.ProductHandler, logger *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Product Catalog Service",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	origins := opts.CORSAllowOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", handlers.HandleHealth)
	products.RegisterRoutes(app)

	return app
}

// errorHandler renders errors that escaped a handler, such as unknown routes
// or recovered panics, in the same JSON shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}
