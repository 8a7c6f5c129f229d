package worker

import (
	"time"

	"github.com/xraph/jobqueue/id"
)

// Kind classifies the result of one attempt.
type Kind int

const (
	// KindCompleted means the processor returned successfully.
	KindCompleted Kind = iota
	// KindRetry means the attempt failed and the job should run again at
	// Outcome.RetryAt.
	KindRetry
	// KindFailed means the attempt failed and no retries remain.
	KindFailed
	// KindCancelled means the job was cancelled while it ran.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindCompleted:
		return "completed"
	case KindRetry:
		return "retry"
	case KindFailed:
		return "failed"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is what a worker reports after an attempt.
type Outcome struct {
	JobID   id.JobID
	Worker  string
	Kind    Kind
	Result  any
	Err     error
	RetryAt time.Time
	Elapsed time.Duration
}
