package handler

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type ProductHandler struct {
	service service.ProductService
	export  service.ExportService
	log     *logrus.Logger
}

func NewProductHandler(s service.ProductService, e service.ExportService, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{service: s, export: e, log: log}
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter, err := parseProductFilter(c, true)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	products, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}
	product, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}
	product, err := h.service.Update(c.UserContext(), c.Params("sku"), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	sku := c.Params("sku")
	if err := h.service.Delete(c.UserContext(), sku); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Product with SKU '%s' deleted successfully", sku)})
}

func (h *ProductHandler) DeleteAllProducts(c *fiber.Ctx) error {
	n, err := h.service.DeleteAll(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Deleted %d products successfully.", n),
		"deleted": n,
	})
}

// ExportProducts streams the filtered catalog as csv (default) or xlsx.
func (h *ProductHandler) ExportProducts(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", service.FormatCSV))
	contentType, err := h.export.ContentType(format)
	if err != nil {
		return respondError(c, h.log, err)
	}
	filter, err := parseProductFilter(c, false)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	var buf bytes.Buffer
	if err := h.export.Export(c.UserContext(), filter, format, &buf); err != nil {
		return respondError(c, h.log, err)
	}

	// Attachment derives a Content-Type from the extension; override it after.
	c.Attachment(fmt.Sprintf("products-%s.%s", time.Now().UTC().Format("20060102-150405"), format))
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(buf.Bytes())
}

func (h *ProductHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.export.Template(&buf); err != nil {
		return respondError(c, h.log, err)
	}
	c.Attachment("products-template.csv")
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Send(buf.Bytes())
}

// parseProductFilter reads the list query. Limits above maxLimit are capped.
func parseProductFilter(c *fiber.Ctx, paged bool) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		SKU:         c.Query("sku"),
		Name:        c.Query("name"),
		Description: c.Query("description"),
	}

	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("active must be a boolean")
		}
		filter.Active = &active
	}
	if !paged {
		return filter, nil
	}

	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return filter, err
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return filter, err
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	filter.Skip = skip
	filter.Limit = limit
	return filter, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
