package repository

import (
	"context"

	"asklaw-backend/internal/domain/model"
)

// JobRepository persists job records in the state store. Every write
// refreshes the record's retention TTL; once that window elapses the record
// is purged and Find returns domain.ErrNotFound.
//
// Mutation is single-writer by construction: only the worker holding the
// queue delivery for a job calls the Mark* methods.
type JobRepository interface {
	Create(ctx context.Context, job *model.AskJob) error
	Find(ctx context.Context, id string) (*model.AskJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id, resultRef string, cached bool) error
	MarkError(ctx context.Context, id, message string) error
}

// AnswerRepository stores immutable answer records under a key derived from
// the job ID.
type AnswerRepository interface {
	// SaveAnswer writes the answer and returns the result reference to attach
	// to the job record.
	SaveAnswer(ctx context.Context, jobID, answer string) (resultRef string, err error)
	FindAnswer(ctx context.Context, resultRef string) (string, error)
}

// QuestionCache is the short-horizon de-duplication cache keyed by user and
// a stable hash of the question text. Concurrent writers for the same key are
// tolerated; last writer wins.
type QuestionCache interface {
	// Get returns the cached answer and whether the lookup hit.
	Get(ctx context.Context, userID, question string) (string, bool, error)
	Put(ctx context.Context, userID, question, answer string) error
}
