package handler

import (
	"catalog-api/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Import   *ImportHandler
	Products *ProductHandler
	Webhooks *WebhookHandler
	Hub      *ws.Hub
}

// Register mounts every route on app. The websocket route is skipped when
// Hub is nil.
func (h *Handlers) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/upload", h.Import.Upload)
	app.Get("/upload/template", h.Products.Template)
	app.Get("/job_status/:job_id", h.Import.JobStatus)

	app.Get("/products", h.Products.GetProducts)
	app.Get("/products/export", h.Products.ExportProducts)
	app.Post("/products", h.Products.CreateProduct)
	app.Delete("/products", h.Products.DeleteAllProducts)
	app.Get("/products/:sku", h.Products.GetProduct)
	app.Put("/products/:sku", h.Products.UpdateProduct)
	app.Delete("/products/:sku", h.Products.DeleteProduct)

	app.Get("/webhooks", h.Webhooks.GetWebhooks)
	app.Post("/webhooks", h.Webhooks.CreateWebhook)
	app.Get("/webhooks/:id", h.Webhooks.GetWebhook)
	app.Put("/webhooks/:id", h.Webhooks.UpdateWebhook)
	app.Delete("/webhooks/:id", h.Webhooks.DeleteWebhook)
	app.Post("/webhooks/:id/test", h.Webhooks.TestWebhook)

	if h.Hub == nil {
		return
	}
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !h.Hub.Join(c) {
			return
		}
		defer h.Hub.Leave(c)

		for {
			// clients only listen; reads detect disconnects
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
