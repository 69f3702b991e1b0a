package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/model"

	"github.com/redis/go-redis/v9"
)

const jobKeyPrefix = "catalog:import_job:"

// RedisStore keeps snapshots as JSON strings so several API replicas can
// answer status polls. Keys are written without a TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, id string) (model.ImportJob, error) {
	job := model.NewImportJob(id)
	if err := s.put(ctx, job); err != nil {
		return model.ImportJob{}, err
	}
	return job, nil
}

func (s *RedisStore) Update(ctx context.Context, job model.ImportJob) error {
	job.UpdatedAt = time.Now()
	return s.put(ctx, job)
}

func (s *RedisStore) Get(ctx context.Context, id string) (model.ImportJob, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.UnknownJob(id), nil
	}
	if err != nil {
		return model.ImportJob{}, fmt.Errorf("jobstore: get %s: %w", id, err)
	}

	var job model.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return model.ImportJob{}, fmt.Errorf("jobstore: decode %s: %w", id, err)
	}
	return job, nil
}

func (s *RedisStore) put(ctx context.Context, job model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("jobstore: encode %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, jobKey(job.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("jobstore: set %s: %w", job.ID, err)
	}
	return nil
}
