package handler

import (
	"context"
	"io"
	"sync"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type submitted struct {
	jobID string
	path  string
}

type fakeSubmitter struct {
	mu   sync.Mutex
	jobs []submitted
}

func (f *fakeSubmitter) Submit(jobID, path string) {
	f.mu.Lock()
	f.jobs = append(f.jobs, submitted{jobID, path})
	f.mu.Unlock()
}

type stubProducts struct {
	lastFilter repository.ProductFilter
	products   []model.Product
	err        error
}

func (s *stubProducts) List(_ context.Context, f repository.ProductFilter) ([]model.Product, error) {
	s.lastFilter = f
	return s.products, s.err
}

func (s *stubProducts) Get(_ context.Context, sku string) (*model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Product{SKU: sku}, nil
}

func (s *stubProducts) Create(_ context.Context, req *service.CreateProductRequest) (*model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Product{SKU: req.SKU, Name: req.Name, Active: true}, nil
}

func (s *stubProducts) Update(_ context.Context, sku string, req *service.UpdateProductRequest) (*model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := &model.Product{SKU: sku}
	if req.Name != nil {
		p.Name = *req.Name
	}
	return p, nil
}

func (s *stubProducts) Delete(context.Context, string) error { return s.err }

func (s *stubProducts) DeleteAll(context.Context) (int64, error) { return 3, s.err }

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type stubExport struct {
	lastFormat string
}

func (s *stubExport) ContentType(format string) (string, error) {
	switch format {
	case "csv":
		return "text/csv", nil
	case "xlsx":
		return xlsxContentType, nil
	}
	return "", service.ErrInvalidExportFormat
}

func (s *stubExport) Export(_ context.Context, _ repository.ProductFilter, format string, w io.Writer) error {
	s.lastFormat = format
	_, err := io.WriteString(w, "sku\nA\n")
	return err
}

func (s *stubExport) Template(w io.Writer) error {
	_, err := io.WriteString(w, "sku,name,description,price,active\n")
	return err
}

type stubWebhooks struct {
	err    error
	result *service.TestResult
}

func (s *stubWebhooks) List(context.Context) ([]model.Webhook, error) {
	return []model.Webhook{{URL: "https://example.com"}}, s.err
}

func (s *stubWebhooks) Get(_ context.Context, id uint) (*model.Webhook, error) {
	if s.err != nil {
		return nil, s.err
	}
	w := &model.Webhook{URL: "https://example.com"}
	w.ID = id
	return w, nil
}

func (s *stubWebhooks) Create(_ context.Context, req *service.CreateWebhookRequest) (*model.Webhook, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Webhook{URL: req.URL, EventTypes: req.EventTypes, Active: true}, nil
}

func (s *stubWebhooks) Update(ctx context.Context, id uint, _ *service.UpdateWebhookRequest) (*model.Webhook, error) {
	return s.Get(ctx, id)
}

func (s *stubWebhooks) Delete(context.Context, uint) error { return s.err }

func (s *stubWebhooks) Test(context.Context, uint) (*service.TestResult, error) {
	return s.result, s.err
}
