// File: internal/usecase/ask_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/model"
	"asklaw-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ AskUseCase = (*askUC)(nil)

// AskUseCase is the admission/status facade. Submit returns as soon as the
// job record is written and the job is on the queue; Status only reads the
// state store, never the pipeline.
type AskUseCase interface {
	Submit(ctx context.Context, userID, question string) (jobID string, err error)
	Status(ctx context.Context, jobID string) (*model.StatusView, error)
}

type askUC struct {
	jobs    repository.JobRepository
	answers repository.AnswerRepository
	queue   repository.JobQueue
	log     *zerolog.Logger
}

func NewAskUseCase(jobs repository.JobRepository, answers repository.AnswerRepository, queue repository.JobQueue, log *zerolog.Logger) *askUC {
	return &askUC{jobs: jobs, answers: answers, queue: queue, log: log}
}

func (u *askUC) Submit(ctx context.Context, userID, question string) (string, error) {
	userID = strings.TrimSpace(userID)
	question = strings.TrimSpace(question)
	if userID == "" || question == "" {
		return "", fmt.Errorf("%w: user_id and question required", domain.ErrInvalidArgument)
	}

	// ID allocation belongs to the dispatch mechanism. The record is written
	// before the enqueue so a worker can never observe a job without one.
	jobID := u.queue.NextID()
	if err := u.jobs.Create(ctx, model.NewAskJob(jobID, userID, question)); err != nil {
		return "", err
	}
	if err := u.queue.Enqueue(ctx, repository.JobMessage{JobID: jobID, UserID: userID, Question: question}); err != nil {
		return "", err
	}

	u.log.Info().Str("job_id", jobID).Str("user_id", userID).Msg("job admitted")
	return jobID, nil
}

func (u *askUC) Status(ctx context.Context, jobID string) (*model.StatusView, error) {
	job, err := u.jobs.Find(ctx, jobID)
	if err != nil {
		return nil, err
	}

	view := &model.StatusView{JobID: jobID, Status: job.Status, Cached: job.Cached}
	switch job.Status {
	case model.AskJobStatusDone:
		answer, err := u.answers.FindAnswer(ctx, job.ResultRef)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// A done job must have its answer record. Report, never mask.
				u.log.Error().Str("job_id", jobID).Str("result_ref", job.ResultRef).
					Msg("done job is missing its answer record")
				return nil, fmt.Errorf("%w: job %s done but answer missing", domain.ErrInconsistentState, jobID)
			}
			return nil, err
		}
		view.Answer = answer
	case model.AskJobStatusError:
		view.Error = job.LastError
	}
	return view, nil
}
