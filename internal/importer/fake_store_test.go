package importer

import (
	"context"
	"errors"
	"sort"
	"sync"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
)

// fakeStore mimics the upsert transaction semantics of the Postgres
// repository: rows become visible on Commit, keyed by SKULower, last write
// wins.
type fakeStore struct {
	mu          sync.Mutex
	rows        map[string]model.ProductDraft
	begins      int
	commitCalls int
	commits     int
	rollbacks   int
	failCommit  int // 1-based commit call that fails; 0 never fails
	onUpsert    func(model.ProductDraft) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.ProductDraft)}
}

func (s *fakeStore) BeginUpsert(context.Context) (repository.UpsertTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) product(sku string) (model.ProductDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, lower := model.NormalizeSKU(sku)
	d, ok := s.rows[lower]
	return d, ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.rows))
	for k := range s.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeTx struct {
	store   *fakeStore
	pending []model.ProductDraft
	done    bool
}

var errTxDone = errors.New("transaction already closed")

func (tx *fakeTx) Upsert(_ context.Context, d model.ProductDraft) error {
	if tx.done {
		return errTxDone
	}
	if tx.store.onUpsert != nil {
		if err := tx.store.onUpsert(d); err != nil {
			return err
		}
	}
	tx.pending = append(tx.pending, d)
	return nil
}

func (tx *fakeTx) Commit() error {
	if tx.done {
		return errTxDone
	}
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitCalls++
	if s.failCommit == s.commitCalls {
		return errors.New("connection reset by peer")
	}
	tx.done = true
	for _, d := range tx.pending {
		s.rows[d.SKULower] = d
	}
	s.commits++
	return nil
}

func (tx *fakeTx) Rollback() error {
	if tx.done {
		return errTxDone
	}
	tx.done = true
	tx.store.mu.Lock()
	tx.store.rollbacks++
	tx.store.mu.Unlock()
	return nil
}
