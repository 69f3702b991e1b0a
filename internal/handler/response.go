package handler

import (
	"errors"

	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// respondError maps domain errors to HTTP statuses. Unknown errors are
// logged and reported as a generic 500.
func respondError(c *fiber.Ctx, log *logrus.Logger, err error) error {
	switch {
	case service.IsValidation(err):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidExportFormat):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWebhookRequest):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrWebhookNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Webhook not found")
	case errors.Is(err, repository.ErrDuplicateSKU):
		return errorJSON(c, fiber.StatusConflict, "SKU already exists")
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("request failed")
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}
