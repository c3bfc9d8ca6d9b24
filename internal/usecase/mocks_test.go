// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/model"
	"asklaw-backend/internal/domain/ports/repository"
)

// ---- in-memory job repository ----

type memJobRepo struct {
	mu      sync.Mutex
	jobs    map[string]*model.AskJob
	failAll error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*model.AskJob)}
}

func (m *memJobRepo) Create(_ context.Context, job *model.AskJob) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobRepo) Find(_ context.Context, id string) (*model.AskJob, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobRepo) MarkProcessing(_ context.Context, id string) error {
	return m.transition(id, func(j *model.AskJob) {
		j.Status = model.AskJobStatusProcessing
	})
}

func (m *memJobRepo) MarkDone(_ context.Context, id, resultRef string, cached bool) error {
	return m.transition(id, func(j *model.AskJob) {
		j.Status = model.AskJobStatusDone
		j.ResultRef = resultRef
		j.LastError = ""
		j.Cached = cached
	})
}

func (m *memJobRepo) MarkError(_ context.Context, id, message string) error {
	return m.transition(id, func(j *model.AskJob) {
		j.Status = model.AskJobStatusError
		j.LastError = message
		j.ResultRef = ""
	})
}

func (m *memJobRepo) transition(id string, mut func(*model.AskJob)) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	mut(job)
	return nil
}

// ---- in-memory answer repository ----

type memAnswerRepo struct {
	mu      sync.Mutex
	answers map[string]string
	saveErr error
}

func newMemAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{answers: make(map[string]string)}
}

func (m *memAnswerRepo) SaveAnswer(_ context.Context, jobID, answer string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "result:" + jobID
	m.answers[ref] = answer
	return ref, nil
}

func (m *memAnswerRepo) FindAnswer(_ context.Context, resultRef string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer, ok := m.answers[resultRef]
	if !ok {
		return "", domain.ErrNotFound
	}
	return answer, nil
}

// ---- in-memory question cache ----

type memQuestionCache struct {
	mu      sync.Mutex
	entries map[string]string
	putErr  error
	puts    int
}

func newMemQuestionCache() *memQuestionCache {
	return &memQuestionCache{entries: make(map[string]string)}
}

func (m *memQuestionCache) key(userID, question string) string {
	return userID + "|" + question
}

func (m *memQuestionCache) Get(_ context.Context, userID, question string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer, ok := m.entries[m.key(userID, question)]
	return answer, ok, nil
}

func (m *memQuestionCache) Put(_ context.Context, userID, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[m.key(userID, question)] = answer
	return nil
}

// ---- fake queue ----

type fakeQueue struct {
	mu       sync.Mutex
	nextID   int
	enqueued []repository.JobMessage
	enqErr   error
}

func (q *fakeQueue) NextID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	return fmt.Sprintf("job-%04d", q.nextID)
}

func (q *fakeQueue) Enqueue(_ context.Context, msg repository.JobMessage) error {
	if q.enqErr != nil {
		return q.enqErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, msg)
	return nil
}

func (q *fakeQueue) Dequeue(_ context.Context) (*repository.JobMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.enqueued) == 0 {
		return nil, domain.ErrNotFound
	}
	msg := q.enqueued[0]
	q.enqueued = q.enqueued[1:]
	return &msg, nil
}

func (q *fakeQueue) Ack(_ context.Context, _ *repository.JobMessage) error { return nil }

func (q *fakeQueue) RequeueStale(_ context.Context) (int, error) { return 0, nil }

// ---- fake retriever / generator ----

type fakeRetriever struct {
	passages []model.Passage
	err      error
	calls    int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) ([]model.Passage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

type fakeGenerator struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, _, contextText string) (string, error) {
	f.calls++
	f.lastPrompt = contextText
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
