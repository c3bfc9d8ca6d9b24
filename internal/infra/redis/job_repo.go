package redis

import (
	"context"
	"fmt"
	"time"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/model"
	"asklaw-backend/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo persists job records as Redis hashes under job:{id}. Every write
// refreshes the retention TTL, so a record disappears a fixed window after
// its last transition and status queries then see ErrNotFound.
type JobRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewJobRepo(client RedisClient, retention time.Duration) *JobRepo {
	return &JobRepo{client: client, ttl: retention}
}

func (r *JobRepo) Create(ctx context.Context, job *model.AskJob) error {
	fields := map[string]interface{}{
		"status":     string(job.Status),
		"user_id":    job.UserID,
		"question":   job.Question,
		"created_at": job.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return r.write(ctx, job.ID, fields)
}

func (r *JobRepo) Find(ctx context.Context, id string) (*model.AskJob, error) {
	fields, err := r.client.HGetAll(ctx, jobKey(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	job := &model.AskJob{
		ID:        id,
		UserID:    fields["user_id"],
		Question:  fields["question"],
		Status:    model.AskJobStatus(fields["status"]),
		ResultRef: fields["result_ref"],
		LastError: fields["error"],
		Cached:    fields["cached"] == "1",
	}
	if ts := fields["created_at"]; ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			job.CreatedAt = t
		}
	}
	return job, nil
}

func (r *JobRepo) MarkProcessing(ctx context.Context, id string) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	return r.write(ctx, id, map[string]interface{}{
		"status": string(model.AskJobStatusProcessing),
	})
}

// MarkDone and MarkError clear each other's field: a retried job may have
// recorded an error on an earlier attempt, and a terminal record carries
// exactly one of result_ref / error, never both.
func (r *JobRepo) MarkDone(ctx context.Context, id, resultRef string, cached bool) error {
	cachedFlag := "0"
	if cached {
		cachedFlag = "1"
	}
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	if err := r.client.HDel(ctx, jobKey(id), "error"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return r.write(ctx, id, map[string]interface{}{
		"status":     string(model.AskJobStatusDone),
		"result_ref": resultRef,
		"cached":     cachedFlag,
	})
}

func (r *JobRepo) MarkError(ctx context.Context, id, message string) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	if err := r.client.HDel(ctx, jobKey(id), "result_ref"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return r.write(ctx, id, map[string]interface{}{
		"status": string(model.AskJobStatusError),
		"error":  message,
	})
}

// exists guards the Mark* transitions: a write against a purged record would
// otherwise resurrect a partial hash holding only the transitioned fields.
func (r *JobRepo) exists(ctx context.Context, id string) error {
	fields, err := r.client.HGetAll(ctx, jobKey(id))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepo) write(ctx context.Context, id string, fields map[string]interface{}) error {
	key := jobKey(id)
	if err := r.client.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := r.client.Expire(ctx, key, r.ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
