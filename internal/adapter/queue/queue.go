package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

const queueKey = "vendor-import:queue"

// RedisQueue implements usecase.ImportQueue on a Redis list. LPUSH/BRPOP
// gives FIFO delivery and keeps jobs durable across dispatcher restarts.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a new RedisQueue.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Enqueue pushes a job onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job *domain.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return q.client.LPush(ctx, queueKey, data).Err()
}

// Depth returns the number of jobs waiting in the queue.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, queueKey).Result()
}

// DispatcherConfig holds dependencies for the Dispatcher.
type DispatcherConfig struct {
	Client           *redis.Client
	ProcessURL       string
	InternalToken    string
	HTTPClient       *http.Client
	JobStore         usecase.JobStateStore
	RedeliveryBudget int
	Logger           zerolog.Logger
}

// Dispatcher drains the queue and delivers each job to the processing
// endpoint. Redelivery is the dispatcher's responsibility, not the handler's:
// a failed delivery is retried up to the redelivery budget, then the job is
// marked failed and dropped.
type Dispatcher struct {
	client           *redis.Client
	processURL       string
	internalToken    string
	httpClient       *http.Client
	jobStore         usecase.JobStateStore
	redeliveryBudget int
	logger           zerolog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if cfg.RedeliveryBudget <= 0 {
		cfg.RedeliveryBudget = usecase.QueueRedeliveryBudget
	}

	return &Dispatcher{
		client:           cfg.Client,
		processURL:       cfg.ProcessURL,
		internalToken:    cfg.InternalToken,
		httpClient:       cfg.HTTPClient,
		jobStore:         cfg.JobStore,
		redeliveryBudget: cfg.RedeliveryBudget,
		logger:           cfg.Logger,
	}
}

// Run blocks on the queue and delivers jobs until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info().Str("process_url", d.processURL).Msg("dispatcher started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := d.client.BRPop(ctx, time.Second, queueKey).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			d.logger.Error().Err(err).Msg("queue pop failed")
			time.Sleep(time.Second)

			continue
		}

		// BRPop returns [key, value].
		d.dispatch(ctx, []byte(result[1]))
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, payload []byte) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second

	deliveries := 0
	err := backoff.Retry(func() error {
		deliveries++
		if err := d.deliver(ctx, payload); err != nil {
			if deliveries > d.redeliveryBudget {
				return backoff.Permanent(err)
			}

			d.logger.Warn().Err(err).Int("delivery", deliveries).Msg("job delivery failed, redelivering")

			return err
		}

		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		d.abandon(ctx, payload, err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.processURL, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Token", d.internalToken)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("process endpoint returned %d: %s", resp.StatusCode, body)
	}

	return nil
}

// abandon marks a job failed once its redelivery budget is spent, so status
// lookups report the terminal state instead of a job stuck in processing.
func (d *Dispatcher) abandon(ctx context.Context, payload []byte, cause error) {
	var job domain.ImportJob
	if err := json.Unmarshal(payload, &job); err != nil {
		d.logger.Error().Err(err).Msg("abandoning undecodable job payload")
		return
	}

	job.Status = domain.JobFailed
	job.Error = cause.Error()
	if err := d.jobStore.Save(ctx, &job); err != nil {
		d.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to record abandoned job state")
	}

	d.logger.Error().
		Err(cause).
		Str("job_id", job.ID).
		Int("redelivery_budget", d.redeliveryBudget).
		Msg("job abandoned after exhausting redeliveries")
}
