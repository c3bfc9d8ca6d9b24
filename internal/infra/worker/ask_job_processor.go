package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/ports/repository"
	"asklaw-backend/internal/infra/metrics"
	"asklaw-backend/internal/usecase"
)

// AskJobProcessor is the dispatch layer: it pulls deliveries off the durable
// queue, runs the pipeline under the retry policy, and owns the terminal
// error transition when the budget is exhausted.
type AskJobProcessor struct {
	queue    repository.JobQueue
	jobs     repository.JobRepository
	pipeline usecase.PipelineUseCase
	retry    RetryPolicy
	log      *zerolog.Logger
}

func NewAskJobProcessor(
	queue repository.JobQueue,
	jobs repository.JobRepository,
	pipeline usecase.PipelineUseCase,
	retry RetryPolicy,
	log *zerolog.Logger,
) *AskJobProcessor {
	return &AskJobProcessor{queue: queue, jobs: jobs, pipeline: pipeline, retry: retry, log: log}
}

// Start runs the dequeue loop, handing each delivery to the worker pool.
// This should be run in a goroutine. A second slow ticker sweeps deliveries
// whose holding worker died before acknowledging.
func (p *AskJobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Msg("ask job processor started")

	go p.sweepStale(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("ask job processor stopping")
			return
		default:
		}

		msg, err := p.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				p.log.Error().Err(err).Msg("dequeue failed")
				time.Sleep(time.Second)
			}
			continue
		}

		m := msg
		if err := pool.Submit(func(ctx context.Context) error {
			p.processOne(ctx, m)
			return nil
		}); err != nil {
			// Pool saturated: drop the delivery without acking so the ack
			// timeout returns it to the pending queue.
			p.log.Warn().Str("job_id", m.JobID).Err(err).Msg("pool rejected job; leaving for redelivery")
		}
	}
}

func (p *AskJobProcessor) sweepStale(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := p.queue.RequeueStale(ctx); err != nil {
				p.log.Error().Err(err).Msg("stale delivery sweep failed")
			} else if n > 0 {
				p.log.Warn().Int("requeued", n).Msg("stale deliveries returned to queue")
			}
		}
	}
}

// processOne runs one delivery to a terminal state: done on the first
// successful attempt, error once the retry budget is exhausted. Every failed
// attempt writes the error transition with the verbatim failure message, so
// a poll between attempts sees "error" rather than a stuck "processing".
func (p *AskJobProcessor) processOne(ctx context.Context, msg *repository.JobMessage) {
	log := p.log.With().Str("job_id", msg.JobID).Logger()
	start := time.Now()

	// A redelivery can arrive after the job already finished (lost ack, or a
	// delivery requeued while a worker still held it). Terminal jobs must not
	// transition again; ack and drop.
	if job, err := p.jobs.Find(ctx, msg.JobID); err == nil && job.Status.Terminal() {
		log.Info().Str("status", string(job.Status)).Msg("job already terminal; dropping redelivery")
		if ackErr := p.queue.Ack(ctx, msg); ackErr != nil {
			log.Error().Err(ackErr).Msg("ack failed; job may be redelivered")
		}
		return
	} else if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Msg("job record missing; dropping delivery")
		if ackErr := p.queue.Ack(ctx, msg); ackErr != nil {
			log.Error().Err(ackErr).Msg("ack failed; job may be redelivered")
		}
		return
	}

	var err error
	for attempt := 1; attempt <= p.retry.MaxAttempts; attempt++ {
		if waitErr := p.retry.Wait(ctx, attempt); waitErr != nil {
			return // shutting down; delivery stays unacked for redelivery
		}
		if attempt > 1 {
			metrics.IncJobRetry()
			log.Info().Int("attempt", attempt).Msg("retrying job")
		}

		err = p.pipeline.Execute(ctx, *msg)
		if err == nil {
			break
		}
		log.Error().Err(err).Int("attempt", attempt).Msg("job attempt failed")
		p.markError(ctx, msg.JobID, err, log)
	}

	status := "done"
	if err != nil {
		status = "error"
	}
	metrics.IncJobProcessed(status)
	metrics.ObserveJobDuration(int(time.Since(start) / time.Millisecond))

	if ackErr := p.queue.Ack(ctx, msg); ackErr != nil {
		log.Error().Err(ackErr).Msg("ack failed; job may be redelivered")
	}
	log.Info().Str("status", status).Dur("duration", time.Since(start)).Msg("job finished")
}

// markError persists the error transition. The write is retried on its own
// small budget, independent of what broke the attempt; if it still fails the
// job stays observably "processing" until its record expires.
func (p *AskJobProcessor) markError(ctx context.Context, jobID string, cause error, log zerolog.Logger) {
	for i := 0; i < 3; i++ {
		if err := p.jobs.MarkError(ctx, jobID, cause.Error()); err == nil {
			return
		} else if i == 2 {
			log.Error().Err(err).Msg("error transition write failed; job stuck in processing until expiry")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}
