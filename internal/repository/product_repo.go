package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("sku already exists")
)

// upsertColumns are overwritten when an imported row hits an existing sku_lower.
var upsertColumns = []string{"sku", "name", "description", "price", "active", "updated_at"}

// ProductFilter narrows product listings. Text filters are case-insensitive
// substring matches. A zero Limit means no limit.
type ProductFilter struct {
	SKU         string
	Name        string
	Description string
	Active      *bool
	Skip        int
	Limit       int
}

// UpsertTx is an open transaction that accepts product upserts.
type UpsertTx interface {
	Upsert(ctx context.Context, draft model.ProductDraft) error
	Commit() error
	Rollback() error
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindInBatches(ctx context.Context, filter ProductFilter, size int, fn func([]model.Product) error) error
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	DeleteBySKU(ctx context.Context, sku string) error
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	BeginUpsert(ctx context.Context) (UpsertTx, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translateProductError(err)
	}
	return nil
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := applyProductFilter(r.db.WithContext(ctx), filter).Order("id ASC")
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&products).Error
	return products, err
}

// FindInBatches walks every product matching filter, size rows at a time.
// Skip and Limit are ignored.
func (r *productRepo) FindInBatches(ctx context.Context, filter ProductFilter, size int, fn func([]model.Product) error) error {
	var batch []model.Product
	res := applyProductFilter(r.db.WithContext(ctx), filter).
		FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	_, lower := model.NormalizeSKU(sku)
	err := r.db.WithContext(ctx).First(&product, "sku_lower = ?", lower).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return translateProductError(err)
	}
	return nil
}

func (r *productRepo) DeleteBySKU(ctx context.Context, sku string) error {
	_, lower := model.NormalizeSKU(sku)
	res := r.db.WithContext(ctx).Where("sku_lower = ?", lower).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

// BeginUpsert opens a transaction for the import path. Callers must Commit or
// Rollback it.
func (r *productRepo) BeginUpsert(ctx context.Context) (UpsertTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &upsertTx{tx: tx}, nil
}

type upsertTx struct {
	tx *gorm.DB
}

// Upsert inserts the draft or, when sku_lower already exists, overwrites the
// existing row in the same statement. Concurrent writers are serialized by
// the unique index.
func (t *upsertTx) Upsert(ctx context.Context, draft model.ProductDraft) error {
	return t.tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku_lower"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(draft.Product()).Error
}

func (t *upsertTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *upsertTx) Rollback() error {
	return t.tx.Rollback().Error
}

func applyProductFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	if f.SKU != "" {
		q = q.Where("sku ILIKE ?", likePattern(f.SKU))
	}
	if f.Name != "" {
		q = q.Where("name ILIKE ?", likePattern(f.Name))
	}
	if f.Description != "" {
		q = q.Where("description ILIKE ?", likePattern(f.Description))
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func translateProductError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSKU
	}
	return err
}
