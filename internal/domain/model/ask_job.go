package model

import "time"

type AskJobStatus string

const (
	AskJobStatusPending    AskJobStatus = "pending"
	AskJobStatusProcessing AskJobStatus = "processing"
	AskJobStatusDone       AskJobStatus = "done"
	AskJobStatusError      AskJobStatus = "error"
)

// Terminal reports whether no further transitions are possible for a job
// in this status.
func (s AskJobStatus) Terminal() bool {
	return s == AskJobStatusDone || s == AskJobStatusError
}

// AskJob is one user question's asynchronous processing unit. The record
// in the state store is the single source of truth; this struct is only a
// snapshot read from or about to be written to it.
//
// Invariant: once the status leaves "processing", exactly one of
// ResultRef / LastError is set, never both.
type AskJob struct {
	ID        string
	UserID    string
	Question  string
	Status    AskJobStatus
	ResultRef string
	LastError string
	Cached    bool
	CreatedAt time.Time
}

func NewAskJob(id, userID, question string) *AskJob {
	return &AskJob{
		ID:        id,
		UserID:    userID,
		Question:  question,
		Status:    AskJobStatusPending,
		CreatedAt: time.Now(),
	}
}

// StatusView is what a polling client sees for a job.
type StatusView struct {
	JobID  string
	Status AskJobStatus
	Answer string
	Error  string
	Cached bool
}
