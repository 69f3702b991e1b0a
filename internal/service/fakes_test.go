package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeProductRepo keeps products keyed by sku_lower.
type fakeProductRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]model.Product
}

func newFakeProductRepo(products ...model.Product) *fakeProductRepo {
	r := &fakeProductRepo{rows: map[string]model.Product{}}
	for _, p := range products {
		p := p
		_ = r.Create(context.Background(), &p)
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.SKULower == "" {
		p.SKU, p.SKULower = model.NormalizeSKU(p.SKU)
	}
	if _, ok := r.rows[p.SKULower]; ok {
		return repository.ErrDuplicateSKU
	}
	r.nextID++
	p.ID = r.nextID
	r.rows[p.SKULower] = *p
	return nil
}

func (r *fakeProductRepo) sorted() []model.Product {
	out := make([]model.Product, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeProductRepo) FindAll(_ context.Context, f repository.ProductFilter) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.sorted() {
		if f.SKU != "" && !strings.Contains(strings.ToLower(p.SKU), strings.ToLower(f.SKU)) {
			continue
		}
		if f.Active != nil && p.Active != *f.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) FindInBatches(ctx context.Context, f repository.ProductFilter, size int, fn func([]model.Product) error) error {
	all, _ := r.FindAll(ctx, f)
	for start := 0; start < len(all); start += size {
		end := start + size
		if end > len(all) {
			end = len(all)
		}
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, lower := model.NormalizeSKU(sku)
	p, ok := r.rows[lower]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, existing := range r.rows {
		if existing.ID == p.ID {
			if other, ok := r.rows[p.SKULower]; ok && other.ID != p.ID {
				return repository.ErrDuplicateSKU
			}
			delete(r.rows, key)
			r.rows[p.SKULower] = *p
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (r *fakeProductRepo) DeleteBySKU(_ context.Context, sku string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, lower := model.NormalizeSKU(sku)
	if _, ok := r.rows[lower]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.rows, lower)
	return nil
}

func (r *fakeProductRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.rows))
	r.rows = map[string]model.Product{}
	return n, nil
}

func (r *fakeProductRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *fakeProductRepo) BeginUpsert(context.Context) (repository.UpsertTx, error) {
	panic("not used by services")
}

type fakeWebhookRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]model.Webhook
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{rows: map[uint]model.Webhook{}}
}

func (r *fakeWebhookRepo) Create(_ context.Context, w *model.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	w.ID = r.nextID
	r.rows[w.ID] = *w
	return nil
}

func (r *fakeWebhookRepo) FindAll(context.Context) ([]model.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Webhook, 0, len(r.rows))
	for id := uint(1); id <= r.nextID; id++ {
		if w, ok := r.rows[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWebhookRepo) FindByID(_ context.Context, id uint) (*model.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrWebhookNotFound
	}
	return &w, nil
}

func (r *fakeWebhookRepo) Update(_ context.Context, w *model.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[w.ID] = *w
	return nil
}

func (r *fakeWebhookRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrWebhookNotFound
	}
	delete(r.rows, id)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEvents) Publish(eventType string, _ interface{}) {
	r.mu.Lock()
	r.events = append(r.events, eventType)
	r.mu.Unlock()
}
