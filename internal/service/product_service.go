package service

import (
	"context"
	"errors"
	"strings"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductDeleted     = "product.deleted"
	EventProductsDeletedAll = "products.deleted_all"
)

// EventPublisher receives catalog events. ws.Hub satisfies it.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

type CreateProductRequest struct {
	SKU         string           `json:"sku" validate:"required,notblank,max=255"`
	Name        string           `json:"name" validate:"max=512"`
	Description string           `json:"description" validate:"max=1024"`
	Price       *decimal.Decimal `json:"price"`
	Active      *bool            `json:"active"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,notblank,max=255"`
	Name        *string          `json:"name" validate:"omitempty,max=512"`
	Description *string          `json:"description" validate:"omitempty,max=1024"`
	Price       *decimal.Decimal `json:"price"`
	Active      *bool            `json:"active"`
}

type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, sku string) (*model.Product, error)
	Create(ctx context.Context, req *CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, sku string, req *UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, sku string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
	events      EventPublisher
	log         *logrus.Logger
}

func NewProductService(repo repository.ProductRepository, events EventPublisher, log *logrus.Logger) ProductService {
	return &productService{productRepo: repo, events: events, log: log}
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, filter)
}

func (s *productService) Get(ctx context.Context, sku string) (*model.Product, error) {
	return s.productRepo.FindBySKU(ctx, sku)
}

func (s *productService) Create(ctx context.Context, req *CreateProductRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid(validator.Message(errs))
	}
	price, err := normalizePrice(req.Price)
	if err != nil {
		return nil, err
	}

	sku, lower := model.NormalizeSKU(req.SKU)
	product := &model.Product{
		SKU:         sku,
		SKULower:    lower,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		Active:      true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.WithField("sku", product.SKU).Info("product created")
	s.publish(EventProductCreated, product)
	return product, nil
}

func (s *productService) Update(ctx context.Context, sku string, req *UpdateProductRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid(validator.Message(errs))
	}

	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		product.SKU, product.SKULower = model.NormalizeSKU(*req.SKU)
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		price, err := normalizePrice(req.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.log.WithField("sku", product.SKU).Info("product updated")
	s.publish(EventProductUpdated, product)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, sku string) error {
	if err := s.productRepo.DeleteBySKU(ctx, sku); err != nil {
		return err
	}
	s.log.WithField("sku", sku).Info("product deleted")
	s.publish(EventProductDeleted, map[string]string{"sku": sku})
	return nil
}

func (s *productService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.productRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.WithField("deleted", n).Warn("all products deleted")
	s.publish(EventProductsDeletedAll, map[string]int64{"deleted": n})
	return n, nil
}

func (s *productService) publish(eventType string, data interface{}) {
	if s.events != nil {
		s.events.Publish(eventType, data)
	}
}

func normalizePrice(p *decimal.Decimal) (decimal.NullDecimal, error) {
	if p == nil {
		return decimal.NullDecimal{}, nil
	}
	v := p.Round(2)
	if v.IsNegative() {
		return decimal.NullDecimal{}, invalid("price must not be negative")
	}
	if v.GreaterThan(model.MaxPrice) {
		return decimal.NullDecimal{}, invalid("price is too large")
	}
	return decimal.NullDecimal{Decimal: v, Valid: true}, nil
}

// IsValidation reports whether err should be shown to the client as a 400.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
