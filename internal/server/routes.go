package server

import "github.com/gofiber/fiber/v2"

type RouterConfig struct {
	App      *fiber.App
	Invoices InvoiceHandler
}

func (c *RouterConfig) Setup() {
	c.App.Get("/health", c.Invoices.Health)

	api := c.App.Group("/api/v1/invoices")
	{
		api.Post("/upload", c.Invoices.UploadInvoice)
		api.Get("/export", c.Invoices.ExportInvoices) // before /:id so "export" is not parsed as an id
		api.Get("/:id", c.Invoices.GetInvoice)
		api.Get("/", c.Invoices.ListInvoices)
	}
}
