package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Pipeline collaborator failures
	ErrRetrievalUnavailable  = errors.New("retrieval backend unavailable")
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
	ErrGenerationMalformed   = errors.New("generation response malformed")
	ErrStoreUnavailable      = errors.New("state store unavailable")

	// ErrInconsistentState marks a done job whose answer record is missing.
	// It indicates a store/writer bug, not a transient condition.
	ErrInconsistentState = errors.New("job state inconsistent")
)
