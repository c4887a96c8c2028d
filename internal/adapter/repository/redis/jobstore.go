package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/propfolio/backoffice/internal/domain"
)

// JobStateStore implements usecase.JobStateStore using Redis.
type JobStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJobStateStore creates a new JobStateStore.
func NewJobStateStore(client *redis.Client, ttl time.Duration) *JobStateStore {
	return &JobStateStore{
		client: client,
		prefix: "vendor-import:job:",
		ttl:    ttl,
	}
}

// Save records the current state of a job. The document payload is stored
// alongside the lifecycle fields so a queued job can be replayed from the
// store if the queue entry is ever lost.
func (s *JobStateStore) Save(ctx context.Context, job *domain.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+job.ID, data, s.ttl).Err()
}

// Get retrieves a job by ID.
func (s *JobStateStore) Get(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	data, err := s.client.Get(ctx, s.prefix+jobID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrJobNotFound
		}

		return nil, err
	}

	var job domain.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}
