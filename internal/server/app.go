package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber application with middleware and routes.
func NewApp(invoices InvoiceHandler, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "integration-service",
		BodyLimit: bodyLimit,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	routes := RouterConfig{App: app, Invoices: invoices}
	routes.Setup()
	return app
}
