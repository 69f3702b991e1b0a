package handler

import (
	"strconv"

	"catalog-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type WebhookHandler struct {
	service service.WebhookService
	log     *logrus.Logger
}

func NewWebhookHandler(s service.WebhookService, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{service: s, log: log}
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *WebhookHandler) GetWebhooks(c *fiber.Ctx) error {
	webhooks, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(webhooks)
}

func (h *WebhookHandler) GetWebhook(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook ID")
	}
	webhook, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(webhook)
}

func (h *WebhookHandler) CreateWebhook(c *fiber.Ctx) error {
	var req service.CreateWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}
	webhook, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(webhook)
}

func (h *WebhookHandler) UpdateWebhook(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook ID")
	}
	var req service.UpdateWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}
	webhook, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(webhook)
}

func (h *WebhookHandler) DeleteWebhook(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook ID")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Webhook deleted successfully."})
}

func (h *WebhookHandler) TestWebhook(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook ID")
	}
	result, err := h.service.Test(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}
