package redis

import (
	"context"
	"fmt"
	"time"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/ports/repository"
	"asklaw-backend/internal/infra/metrics"
)

var _ repository.AnswerRepository = (*AnswerRepo)(nil)

// AnswerRepo stores immutable answer records under result:{job_id}.
type AnswerRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewAnswerRepo(client RedisClient, ttl time.Duration) *AnswerRepo {
	return &AnswerRepo{client: client, ttl: ttl}
}

func (r *AnswerRepo) SaveAnswer(ctx context.Context, jobID, answer string) (string, error) {
	key := resultKey(jobID)
	if err := r.client.Set(ctx, key, answer, r.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return key, nil
}

func (r *AnswerRepo) FindAnswer(ctx context.Context, resultRef string) (string, error) {
	answer, err := r.client.Get(ctx, resultRef)
	if err != nil {
		if IsNil(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return answer, nil
}

var _ repository.QuestionCache = (*QuestionCacheRepo)(nil)

// QuestionCacheRepo holds the short-TTL de-duplication cache under
// qcache:{user}:{question_hash}. Entries are overwritten only by a later
// successful computation for the same key; last writer wins.
type QuestionCacheRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewQuestionCacheRepo(client RedisClient, ttl time.Duration) *QuestionCacheRepo {
	return &QuestionCacheRepo{client: client, ttl: ttl}
}

func (c *QuestionCacheRepo) Get(ctx context.Context, userID, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, questionCacheKey(userID, question))
	if err != nil {
		if IsNil(err) {
			metrics.IncCacheRequest("question", "miss")
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	metrics.IncCacheRequest("question", "hit")
	return answer, true, nil
}

func (c *QuestionCacheRepo) Put(ctx context.Context, userID, question, answer string) error {
	if err := c.client.Set(ctx, questionCacheKey(userID, question), answer, c.ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
