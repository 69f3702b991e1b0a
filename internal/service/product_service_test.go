package service

import (
	"context"
	"testing"

	"catalog-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	events := &recordingEvents{}
	svc := NewProductService(repo, events, testLogger())

	p, err := svc.Create(ctx, &CreateProductRequest{
		SKU:   " Abc-1 ",
		Name:  " Widget ",
		Price: ptr(decimal.RequireFromString("3.456")),
	})
	require.NoError(t, err)

	assert.Equal(t, "Abc-1", p.SKU)
	assert.Equal(t, "abc-1", p.SKULower)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "3.46", p.Price.Decimal.StringFixed(2))
	assert.True(t, p.Active)
	assert.Equal(t, []string{EventProductCreated}, events.events)

	_, err = svc.Create(ctx, &CreateProductRequest{SKU: "ABC-1"})
	assert.ErrorIs(t, err, repository.ErrDuplicateSKU)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil, testLogger())

	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing sku", CreateProductRequest{Name: "x"}},
		{"blank sku", CreateProductRequest{SKU: "   "}},
		{"negative price", CreateProductRequest{SKU: "A", Price: ptr(decimal.NewFromInt(-1))}},
		{"price too large", CreateProductRequest{SKU: "A", Price: ptr(decimal.NewFromInt(100000000))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestUpdateProductPartial(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	events := &recordingEvents{}
	svc := NewProductService(repo, events, testLogger())

	_, err := svc.Create(ctx, &CreateProductRequest{SKU: "A-1", Name: "Old", Description: "keep"})
	require.NoError(t, err)

	p, err := svc.Update(ctx, "a-1", &UpdateProductRequest{Name: ptr("New"), Active: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "keep", p.Description)
	assert.False(t, p.Active)
	assert.Equal(t, []string{EventProductCreated, EventProductUpdated}, events.events)

	p, err = svc.Update(ctx, "A-1", &UpdateProductRequest{SKU: ptr("B-2")})
	require.NoError(t, err)
	assert.Equal(t, "b-2", p.SKULower)
	_, err = svc.Get(ctx, "a-1")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = svc.Update(ctx, "missing", &UpdateProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = svc.Update(ctx, "B-2", &UpdateProductRequest{Price: ptr(decimal.NewFromInt(-5))})
	assert.True(t, IsValidation(err))
}

func TestUpdateProductDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	svc := NewProductService(newFakeProductRepo(), nil, testLogger())
	_, err := svc.Create(ctx, &CreateProductRequest{SKU: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateProductRequest{SKU: "B"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "B", &UpdateProductRequest{SKU: ptr("a")})
	assert.ErrorIs(t, err, repository.ErrDuplicateSKU)
}

func TestDeleteProducts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	events := &recordingEvents{}
	svc := NewProductService(repo, events, testLogger())
	for _, sku := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, &CreateProductRequest{SKU: sku})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(ctx, "a"))
	assert.ErrorIs(t, svc.Delete(ctx, "a"), repository.ErrProductNotFound)

	n, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, EventProductsDeletedAll, events.events[len(events.events)-1])
}
