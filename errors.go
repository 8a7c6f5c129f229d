package jobqueue

import "errors"

var (
	// Not found errors.
	ErrJobNotFound = errors.New("jobqueue: job not found")

	// Conflict errors.
	ErrJobAlreadyExists = errors.New("jobqueue: job already exists")

	// State errors.
	ErrInvalidState = errors.New("jobqueue: invalid state transition")
	ErrQueueClosed  = errors.New("jobqueue: queue closed")

	// ErrJobCancelled is the cancellation cause delivered to a processor's
	// context when its job is cancelled.
	ErrJobCancelled = errors.New("jobqueue: job cancelled")

	// ErrJobTimeout is recorded when a processor does not return within the
	// worker's timeout. Its message is stored verbatim as the job error.
	ErrJobTimeout = errors.New("Job timeout") //nolint:staticcheck // message is part of the job status contract
)
