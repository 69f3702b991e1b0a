// Package jobstore holds the import job status table: the latest progress
// snapshot per job id, written by the import worker and read by the polling
// endpoint.
package jobstore

import (
	"context"
	"fmt"

	"catalog-api/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store is safe for concurrent use. Get never fails for an unknown id; it
// returns model.UnknownJob instead.
type Store interface {
	Create(ctx context.Context, id string) (model.ImportJob, error)
	Update(ctx context.Context, job model.ImportJob) error
	Get(ctx context.Context, id string) (model.ImportJob, error)
}

// New builds the store selected by backend.
func New(backend string, client *redis.Client) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("jobstore: redis backend requires a client")
		}
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("jobstore: unknown backend %q", backend)
	}
}
