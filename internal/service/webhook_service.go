package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/pkg/jwt"
	"catalog-api/pkg/validator"

	"github.com/sirupsen/logrus"
)

const (
	EventWebhookTest = "webhook.test"

	maxResponseBody = 64 << 10
	tokenTTL        = 5 * time.Minute
)

type CreateWebhookRequest struct {
	URL        string   `json:"url" validate:"required,http_url"`
	EventTypes []string `json:"event_types" validate:"required,min=1,dive,required"`
	Active     *bool    `json:"active"`
}

// UpdateWebhookRequest is a partial update; nil fields are left unchanged.
type UpdateWebhookRequest struct {
	URL        *string  `json:"url" validate:"omitempty,http_url"`
	EventTypes []string `json:"event_types" validate:"omitempty,min=1,dive,required"`
	Active     *bool    `json:"active"`
}

// TestResult reports how a webhook target answered a test delivery.
type TestResult struct {
	StatusCode     int     `json:"status_code"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	ResponseBody   string  `json:"response_body"`
}

type WebhookService interface {
	List(ctx context.Context) ([]model.Webhook, error)
	Get(ctx context.Context, id uint) (*model.Webhook, error)
	Create(ctx context.Context, req *CreateWebhookRequest) (*model.Webhook, error)
	Update(ctx context.Context, id uint, req *UpdateWebhookRequest) (*model.Webhook, error)
	Delete(ctx context.Context, id uint) error
	Test(ctx context.Context, id uint) (*TestResult, error)
}

type webhookService struct {
	webhookRepo repository.WebhookRepository
	client      *http.Client
	secret      []byte
	log         *logrus.Logger
}

// NewWebhookService builds the service. When secret is empty test deliveries
// are sent unsigned.
func NewWebhookService(repo repository.WebhookRepository, timeout time.Duration, secret string, log *logrus.Logger) WebhookService {
	return &webhookService{
		webhookRepo: repo,
		client:      &http.Client{Timeout: timeout},
		secret:      []byte(secret),
		log:         log,
	}
}

func (s *webhookService) List(ctx context.Context) ([]model.Webhook, error) {
	return s.webhookRepo.FindAll(ctx)
}

func (s *webhookService) Get(ctx context.Context, id uint) (*model.Webhook, error) {
	return s.webhookRepo.FindByID(ctx, id)
}

func (s *webhookService) Create(ctx context.Context, req *CreateWebhookRequest) (*model.Webhook, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid(validator.Message(errs))
	}

	webhook := &model.Webhook{
		URL:        strings.TrimSpace(req.URL),
		EventTypes: req.EventTypes,
		Active:     true,
	}
	if req.Active != nil {
		webhook.Active = *req.Active
	}

	if err := s.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"webhook_id": webhook.ID, "url": webhook.URL}).Info("webhook created")
	return webhook, nil
}

func (s *webhookService) Update(ctx context.Context, id uint, req *UpdateWebhookRequest) (*model.Webhook, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid(validator.Message(errs))
	}

	webhook, err := s.webhookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.URL != nil {
		webhook.URL = strings.TrimSpace(*req.URL)
	}
	if req.EventTypes != nil {
		webhook.EventTypes = req.EventTypes
	}
	if req.Active != nil {
		webhook.Active = *req.Active
	}

	if err := s.webhookRepo.Update(ctx, webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

func (s *webhookService) Delete(ctx context.Context, id uint) error {
	if err := s.webhookRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("webhook_id", id).Info("webhook deleted")
	return nil
}

// Test sends one synchronous test delivery. Any HTTP answer, including
// non-2xx, is a result; transport failures wrap ErrWebhookRequest.
func (s *webhookService) Test(ctx context.Context, id uint) (*TestResult, error) {
	webhook, err := s.webhookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event":      EventWebhookTest,
		"webhook_id": webhook.ID,
		"message":    "Test webhook trigger",
		"timestamp":  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "catalog-api-webhook/1.0")
	req.Header.Set("X-Webhook-Event", EventWebhookTest)
	if len(s.secret) > 0 {
		token, err := jwt.SignDelivery(s.secret, webhook.ID, EventWebhookTest, tokenTTL)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Webhook-Token", token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.WithError(err).WithField("webhook_id", webhook.ID).Warn("webhook test failed")
		return nil, fmt.Errorf("%w: %v", ErrWebhookRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrWebhookRequest, err)
	}
	elapsed := time.Since(start)

	s.log.WithFields(logrus.Fields{
		"webhook_id": webhook.ID,
		"status":     resp.StatusCode,
		"latency":    elapsed,
	}).Info("webhook test delivered")

	return &TestResult{
		StatusCode:     resp.StatusCode,
		ResponseTimeMS: float64(elapsed.Microseconds()) / 1000,
		ResponseBody:   string(body),
	}, nil
}
