package repository

import (
	"context"
	"errors"

	"catalog-api/internal/model"

	"gorm.io/gorm"
)

var ErrWebhookNotFound = errors.New("webhook not found")

type WebhookRepository interface {
	Create(ctx context.Context, webhook *model.Webhook) error
	FindAll(ctx context.Context) ([]model.Webhook, error)
	FindByID(ctx context.Context, id uint) (*model.Webhook, error)
	Update(ctx context.Context, webhook *model.Webhook) error
	Delete(ctx context.Context, id uint) error
}

type webhookRepo struct {
	db *gorm.DB
}

func NewWebhookRepo(db *gorm.DB) WebhookRepository {
	return &webhookRepo{db}
}

func (r *webhookRepo) Create(ctx context.Context, webhook *model.Webhook) error {
	return r.db.WithContext(ctx).Create(webhook).Error
}

func (r *webhookRepo) FindAll(ctx context.Context) ([]model.Webhook, error) {
	var webhooks []model.Webhook
	err := r.db.WithContext(ctx).Order("id ASC").Find(&webhooks).Error
	return webhooks, err
}

func (r *webhookRepo) FindByID(ctx context.Context, id uint) (*model.Webhook, error) {
	var webhook model.Webhook
	err := r.db.WithContext(ctx).First(&webhook, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWebhookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (r *webhookRepo) Update(ctx context.Context, webhook *model.Webhook) error {
	return r.db.WithContext(ctx).Save(webhook).Error
}

func (r *webhookRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Webhook{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWebhookNotFound
	}
	return nil
}
