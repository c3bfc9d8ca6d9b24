package repository

import "context"

// JobMessage is the payload carried on the work queue; the job record itself
// stays in the state store.
type JobMessage struct {
	JobID    string `json:"job_id"`
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

// JobQueue is the durable work queue between admission and the worker pool.
// Delivery semantics: at most one active delivery per job under normal
// operation, redelivery only after the acknowledgment timeout elapses.
type JobQueue interface {
	// NextID allocates an opaque unique job ID. Admission delegates ID
	// allocation here so the dispatch mechanism owns the ID space.
	NextID() string
	Enqueue(ctx context.Context, msg JobMessage) error
	// Dequeue blocks up to the queue's poll timeout. When no job arrives it
	// returns domain.ErrNotFound.
	Dequeue(ctx context.Context) (*JobMessage, error)
	// Ack removes the delivery for a finished job, terminal success or not.
	Ack(ctx context.Context, msg *JobMessage) error
	// RequeueStale returns unacknowledged deliveries older than the ack
	// timeout to the pending queue. Returns how many were requeued.
	RequeueStale(ctx context.Context) (int, error)
}
