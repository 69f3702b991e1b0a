package jobstore

import (
	"context"
	"sync"
	"time"

	"catalog-api/internal/model"
)

// MemoryStore keeps snapshots in process memory. Entries never expire and
// are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.ImportJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.ImportJob)}
}

func (s *MemoryStore) Create(_ context.Context, id string) (model.ImportJob, error) {
	job := model.NewImportJob(id)

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()

	return job.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, job model.ImportJob) error {
	job = job.Clone()
	job.UpdatedAt = time.Now()

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.ImportJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return model.UnknownJob(id), nil
	}
	return job.Clone(), nil
}

// Len returns the number of tracked jobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
