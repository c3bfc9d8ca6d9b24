// File: internal/usecase/pipeline_uc.go
package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"asklaw-backend/internal/domain/model"
	"asklaw-backend/internal/domain/ports/adapter"
	"asklaw-backend/internal/domain/ports/repository"
	"asklaw-backend/internal/infra/logging"
)

// Compile-time check
var _ PipelineUseCase = (*pipelineUC)(nil)

// PipelineUseCase executes the retrieval-then-generation pipeline for one
// dequeued job. It owns the state transitions of the job it runs; retry
// policy lives in the dispatch layer, not here.
type PipelineUseCase interface {
	Execute(ctx context.Context, msg repository.JobMessage) error
}

type pipelineUC struct {
	jobs      repository.JobRepository
	answers   repository.AnswerRepository
	qcache    repository.QuestionCache
	retriever adapter.Retriever
	generator adapter.Generator
	topK      int
	log       *zerolog.Logger
}

func NewPipelineUseCase(
	jobs repository.JobRepository,
	answers repository.AnswerRepository,
	qcache repository.QuestionCache,
	retriever adapter.Retriever,
	generator adapter.Generator,
	topK int,
	log *zerolog.Logger,
) *pipelineUC {
	return &pipelineUC{
		jobs:      jobs,
		answers:   answers,
		qcache:    qcache,
		retriever: retriever,
		generator: generator,
		topK:      topK,
		log:       log,
	}
}

// Execute runs the five pipeline steps strictly in order. Any error returns
// to the caller untouched so the dispatch layer can transition the job and
// apply its retry budget.
//
// The cache check happens here rather than at admission so that job
// bookkeeping is uniform whether or not the answer was cached; pollers only
// see the difference through the explicit cached flag.
func (p *pipelineUC) Execute(ctx context.Context, msg repository.JobMessage) error {
	ctx = logging.WithJobID(logging.WithUserID(ctx, msg.UserID), msg.JobID)
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "pipelineUC.Execute")()

	if err := p.jobs.MarkProcessing(ctx, msg.JobID); err != nil {
		return err
	}

	if answer, hit, err := p.qcache.Get(ctx, msg.UserID, msg.Question); err != nil {
		return err
	} else if hit {
		log.Debug().Msg("question cache hit")
		return p.finish(ctx, msg, answer, true)
	}

	passages, err := p.retriever.Retrieve(ctx, msg.Question, p.topK)
	if err != nil {
		return err
	}
	log.Debug().Int("passages", len(passages)).Msg("retrieval completed")

	// Most-relevant first; the generator truncates from the front, so the
	// tail of this concatenation is what survives an overflow.
	answer, err := p.generator.Generate(ctx, msg.Question, joinPassages(passages))
	if err != nil {
		return err
	}

	if err := p.finish(ctx, msg, answer, false); err != nil {
		return err
	}
	// Cache write comes last: only fully persisted computations are worth
	// de-duplicating, and a failure here must not fail the job.
	if err := p.qcache.Put(ctx, msg.UserID, msg.Question, answer); err != nil {
		log.Warn().Err(err).Msg("question cache write failed")
	}
	return nil
}

func (p *pipelineUC) finish(ctx context.Context, msg repository.JobMessage, answer string, cached bool) error {
	resultRef, err := p.answers.SaveAnswer(ctx, msg.JobID, answer)
	if err != nil {
		return err
	}
	return p.jobs.MarkDone(ctx, msg.JobID, resultRef, cached)
}

func joinPassages(passages []model.Passage) string {
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n\n")
}
