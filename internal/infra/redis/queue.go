package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/ports/repository"
)

const (
	pendingKey    = "ask:jobs:pending"
	activeKey     = "ask:jobs:active"
	deliveriesKey = "ask:jobs:deliveries"
)

var _ repository.JobQueue = (*JobQueue)(nil)

// JobQueue is a durable work queue on Redis lists using the reliable-queue
// pattern: BRPOPLPUSH moves a payload from the pending list to the active
// list, Ack removes it, and RequeueStale returns deliveries that were never
// acknowledged within the ack timeout. A payload therefore has at most one
// active delivery under normal operation.
type JobQueue struct {
	client      RedisClient
	pollTimeout time.Duration
	ackTimeout  time.Duration
	log         *zerolog.Logger
}

// delivery tracks an in-flight payload so it can be re-queued if the holding
// worker dies before acknowledging.
type delivery struct {
	Payload     string    `json:"payload"`
	DeliveredAt time.Time `json:"delivered_at"`
}

func NewJobQueue(client RedisClient, pollTimeout, ackTimeout time.Duration, log *zerolog.Logger) *JobQueue {
	if pollTimeout <= 0 {
		pollTimeout = 2 * time.Second
	}
	return &JobQueue{client: client, pollTimeout: pollTimeout, ackTimeout: ackTimeout, log: log}
}

// NextID allocates job IDs for admission. ULIDs are opaque to callers but
// lexicographically sortable by creation time, which keeps debugging sane.
func (q *JobQueue) NextID() string {
	return ulid.Make().String()
}

func (q *JobQueue) Enqueue(ctx context.Context, msg repository.JobMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, pendingKey, payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (q *JobQueue) Dequeue(ctx context.Context) (*repository.JobMessage, error) {
	payload, err := q.client.BRPopLPush(ctx, pendingKey, activeKey, q.pollTimeout)
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var msg repository.JobMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		// Poison payload; drop it from the active list so it cannot loop.
		_ = q.client.LRem(ctx, activeKey, 1, payload)
		q.log.Error().Str("payload", payload).Msg("dropping undecodable queue payload")
		return nil, domain.ErrNotFound
	}

	d, _ := json.Marshal(delivery{Payload: payload, DeliveredAt: time.Now().UTC()})
	if err := q.client.HSet(ctx, deliveriesKey, map[string]interface{}{msg.JobID: d}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &msg, nil
}

func (q *JobQueue) Ack(ctx context.Context, msg *repository.JobMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := q.client.LRem(ctx, activeKey, 1, string(payload)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := q.client.HDel(ctx, deliveriesKey, msg.JobID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (q *JobQueue) RequeueStale(ctx context.Context) (int, error) {
	entries, err := q.client.HGetAll(ctx, deliveriesKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	requeued := 0
	cutoff := time.Now().Add(-q.ackTimeout)
	tracked := make(map[string]bool, len(entries))
	for jobID, raw := range entries {
		var d delivery
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			_ = q.client.HDel(ctx, deliveriesKey, jobID)
			continue
		}
		tracked[d.Payload] = true
		if d.DeliveredAt.After(cutoff) {
			continue
		}
		if err := q.client.LRem(ctx, activeKey, 1, d.Payload); err != nil {
			return requeued, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if err := q.client.LPush(ctx, pendingKey, d.Payload); err != nil {
			return requeued, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if err := q.client.HDel(ctx, deliveriesKey, jobID); err != nil {
			return requeued, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		q.log.Warn().Str("job_id", jobID).Msg("requeued stale delivery")
		requeued++
	}

	// An active-list payload with no delivery record was stranded by a failed
	// delivery write in Dequeue and would otherwise never be redelivered.
	// Return those to pending as well. Workers tolerate the resulting
	// at-least-once delivery: terminal jobs are detected and dropped.
	active, err := q.client.LRange(ctx, activeKey, 0, -1)
	if err != nil {
		return requeued, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	for _, payload := range active {
		if tracked[payload] {
			continue
		}
		if err := q.client.LRem(ctx, activeKey, 1, payload); err != nil {
			return requeued, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if err := q.client.LPush(ctx, pendingKey, payload); err != nil {
			return requeued, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		q.log.Warn().Str("payload", payload).Msg("requeued untracked delivery")
		requeued++
	}
	return requeued, nil
}
