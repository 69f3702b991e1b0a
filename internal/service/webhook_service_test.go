package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-api/internal/repository"
	"catalog-api/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewWebhookService(newFakeWebhookRepo(), time.Second, "", testLogger())

	w, err := svc.Create(ctx, &CreateWebhookRequest{URL: "https://example.com/hook", EventTypes: []string{"products.imported"}})
	require.NoError(t, err)
	assert.True(t, w.Active)

	w, err = svc.Update(ctx, w.ID, &UpdateWebhookRequest{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, w.Active)
	assert.Equal(t, "https://example.com/hook", w.URL)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, w.ID))
	_, err = svc.Get(ctx, w.ID)
	assert.ErrorIs(t, err, repository.ErrWebhookNotFound)
}

func TestWebhookValidation(t *testing.T) {
	svc := NewWebhookService(newFakeWebhookRepo(), time.Second, "", testLogger())

	tests := []struct {
		name string
		req  CreateWebhookRequest
	}{
		{"missing url", CreateWebhookRequest{EventTypes: []string{"a"}}},
		{"non http url", CreateWebhookRequest{URL: "ftp://example.com", EventTypes: []string{"a"}}},
		{"no events", CreateWebhookRequest{URL: "https://example.com"}},
		{"empty event", CreateWebhookRequest{URL: "https://example.com", EventTypes: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tt.req)
			assert.True(t, IsValidation(err))
		})
	}

	_, err := svc.Update(context.Background(), 1, &UpdateWebhookRequest{URL: ptr("not a url")})
	assert.True(t, IsValidation(err))
}

func TestWebhookTestDelivery(t *testing.T) {
	var gotToken, gotEvent string
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Webhook-Token")
		gotEvent = r.Header.Get("X-Webhook-Event")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc := NewWebhookService(newFakeWebhookRepo(), time.Second, "s3cret", testLogger())
	w, err := svc.Create(ctx, &CreateWebhookRequest{URL: srv.URL, EventTypes: []string{"products.imported"}})
	require.NoError(t, err)

	res, err := svc.Test(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "OK", res.ResponseBody)
	assert.GreaterOrEqual(t, res.ResponseTimeMS, 0.0)

	assert.Equal(t, EventWebhookTest, gotEvent)
	assert.Equal(t, "Test webhook trigger", body["message"])
	claims, err := jwt.ValidateDelivery([]byte("s3cret"), gotToken)
	require.NoError(t, err)
	assert.Equal(t, w.ID, claims.WebhookID)
}

func TestWebhookTestReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Webhook-Token"))
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx := context.Background()
	svc := NewWebhookService(newFakeWebhookRepo(), time.Second, "", testLogger())
	w, err := svc.Create(ctx, &CreateWebhookRequest{URL: srv.URL, EventTypes: []string{"x"}})
	require.NoError(t, err)

	res, err := svc.Test(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "nope\n", res.ResponseBody)
}

func TestWebhookTestRequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx := context.Background()
	svc := NewWebhookService(newFakeWebhookRepo(), time.Second, "", testLogger())
	w, err := svc.Create(ctx, &CreateWebhookRequest{URL: url, EventTypes: []string{"x"}})
	require.NoError(t, err)

	_, err = svc.Test(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWebhookRequest)

	_, err = svc.Test(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrWebhookNotFound)
}
