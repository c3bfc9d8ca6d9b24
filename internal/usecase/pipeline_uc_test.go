// File: internal/usecase/pipeline_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/model"
	"asklaw-backend/internal/domain/ports/repository"
)

func pipelineFixture(retriever *fakeRetriever, generator *fakeGenerator) (*pipelineUC, *memJobRepo, *memAnswerRepo, *memQuestionCache) {
	jobs := newMemJobRepo()
	answers := newMemAnswerRepo()
	qcache := newMemQuestionCache()
	uc := NewPipelineUseCase(jobs, answers, qcache, retriever, generator, 5, nopLogger())
	return uc, jobs, answers, qcache
}

func seedJob(t *testing.T, jobs *memJobRepo, jobID, userID, question string) repository.JobMessage {
	t.Helper()
	if err := jobs.Create(context.Background(), model.NewAskJob(jobID, userID, question)); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return repository.JobMessage{JobID: jobID, UserID: userID, Question: question}
}

func TestPipelineHappyPath(t *testing.T) {
	retriever := &fakeRetriever{passages: []model.Passage{
		{Text: "A contract requires offer and acceptance.", Score: 0.92},
		{Text: "Consideration must be present.", Score: 0.81},
	}}
	generator := &fakeGenerator{answer: "A contract requires offer, acceptance and consideration."}
	uc, jobs, answers, qcache := pipelineFixture(retriever, generator)
	msg := seedJob(t, jobs, "j1", "u1", "what makes a contract?")

	if err := uc.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	job, _ := jobs.Find(context.Background(), "j1")
	if job.Status != model.AskJobStatusDone {
		t.Fatalf("status = %q, want done", job.Status)
	}
	if job.Cached {
		t.Error("fresh computation must not be flagged cached")
	}
	answer, err := answers.FindAnswer(context.Background(), job.ResultRef)
	if err != nil || answer != generator.answer {
		t.Errorf("stored answer = %q, %v", answer, err)
	}
	if generator.lastPrompt != "A contract requires offer and acceptance.\n\nConsideration must be present." {
		t.Errorf("context text = %q", generator.lastPrompt)
	}
	if cached, hit, _ := qcache.Get(context.Background(), "u1", "what makes a contract?"); !hit || cached != generator.answer {
		t.Errorf("question cache not written: hit=%v answer=%q", hit, cached)
	}
}

func TestPipelineCacheHitSkipsRetrieval(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{answer: "should not be used"}
	uc, jobs, answers, qcache := pipelineFixture(retriever, generator)
	msg := seedJob(t, jobs, "j2", "u1", "what is negligence?")
	_ = qcache.Put(context.Background(), "u1", "what is negligence?", "cached answer")

	if err := uc.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if retriever.calls != 0 || generator.calls != 0 {
		t.Errorf("cache hit still ran pipeline: retriever=%d generator=%d", retriever.calls, generator.calls)
	}
	job, _ := jobs.Find(context.Background(), "j2")
	if job.Status != model.AskJobStatusDone {
		t.Fatalf("status = %q, want done", job.Status)
	}
	if !job.Cached {
		t.Error("cache hit must set the cached flag")
	}
	if answer, _ := answers.FindAnswer(context.Background(), job.ResultRef); answer != "cached answer" {
		t.Errorf("served answer = %q", answer)
	}
}

func TestPipelineEmptyRetrievalStillCompletes(t *testing.T) {
	retriever := &fakeRetriever{passages: nil}
	generator := &fakeGenerator{answer: "I don't have context to answer that. (No documents indexed.)"}
	uc, jobs, _, _ := pipelineFixture(retriever, generator)
	msg := seedJob(t, jobs, "j3", "u1", "anything indexed?")

	if err := uc.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if generator.lastPrompt != "" {
		t.Errorf("empty retrieval should hand empty context, got %q", generator.lastPrompt)
	}
	job, _ := jobs.Find(context.Background(), "j3")
	if job.Status != model.AskJobStatusDone {
		t.Fatalf("status = %q, want done", job.Status)
	}
}

func TestPipelineGenerationErrorPropagates(t *testing.T) {
	genErr := errors.New("provider down")
	retriever := &fakeRetriever{passages: []model.Passage{{Text: "passage"}}}
	generator := &fakeGenerator{err: genErr}
	uc, jobs, _, qcache := pipelineFixture(retriever, generator)
	msg := seedJob(t, jobs, "j4", "u1", "will this fail?")

	err := uc.Execute(context.Background(), msg)
	if !errors.Is(err, genErr) {
		t.Fatalf("Execute = %v, want the generation error untouched", err)
	}

	job, _ := jobs.Find(context.Background(), "j4")
	if job.Status != model.AskJobStatusProcessing {
		t.Errorf("pipeline must leave the terminal transition to dispatch, status = %q", job.Status)
	}
	if qcache.puts != 0 {
		t.Error("failed computation must not be cached")
	}
}

func TestPipelineRetrievalErrorPropagates(t *testing.T) {
	retErr := errors.New("qdrant http 503")
	retriever := &fakeRetriever{err: retErr}
	generator := &fakeGenerator{}
	uc, jobs, _, _ := pipelineFixture(retriever, generator)
	msg := seedJob(t, jobs, "j5", "u1", "is retrieval up?")

	if err := uc.Execute(context.Background(), msg); !errors.Is(err, retErr) {
		t.Fatalf("Execute = %v, want retrieval error", err)
	}
	if generator.calls != 0 {
		t.Error("generation must not run after retrieval failure")
	}
}

func TestPipelineCacheWriteFailureDoesNotFailJob(t *testing.T) {
	retriever := &fakeRetriever{passages: []model.Passage{{Text: "passage"}}}
	generator := &fakeGenerator{answer: "fine answer"}
	jobs := newMemJobRepo()
	answers := newMemAnswerRepo()
	qcache := newMemQuestionCache()
	qcache.putErr = errors.New("redis write failed")
	uc := NewPipelineUseCase(jobs, answers, qcache, retriever, generator, 5, nopLogger())
	msg := seedJob(t, jobs, "j6", "u1", "cache down?")

	if err := uc.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	job, _ := jobs.Find(context.Background(), "j6")
	if job.Status != model.AskJobStatusDone {
		t.Fatalf("status = %q, want done despite cache write failure", job.Status)
	}
}

func TestPipelineUnknownJobIsNotFound(t *testing.T) {
	uc, _, _, _ := pipelineFixture(&fakeRetriever{}, &fakeGenerator{})
	msg := repository.JobMessage{JobID: "ghost", UserID: "u1", Question: "q"}

	if err := uc.Execute(context.Background(), msg); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Execute(ghost) = %v, want ErrNotFound", err)
	}
}
