package job

import (
	"maps"
	"time"

	"github.com/xraph/jobqueue/id"
)

// State represents the lifecycle state of a job.
type State string

const (
	// StatePending means the job is waiting to be picked up by a worker.
	StatePending State = "pending"
	// StateRunning means a worker is currently executing the job.
	StateRunning State = "running"
	// StateCompleted means the processor returned successfully.
	StateCompleted State = "completed"
	// StateFailed means the job failed and will not be retried.
	StateFailed State = "failed"
	// StateCancelled means the job was explicitly cancelled.
	StateCancelled State = "cancelled"
)

// States lists every state in lifecycle order.
var States = []State{StatePending, StateRunning, StateCompleted, StateFailed, StateCancelled}

// IsTerminal reports whether no further transition is allowed from s.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// CanTransition reports whether the state machine allows s → to.
func (s State) CanTransition(to State) bool {
	switch s {
	case StatePending:
		return to == StateRunning || to == StateCancelled
	case StateRunning:
		return to == StateCompleted || to == StateFailed || to == StatePending || to == StateCancelled
	default:
		return false
	}
}

// Job represents a unit of work to be processed by a worker.
type Job struct {
	ID          id.JobID       `json:"id"`
	Type        string         `json:"type"`
	Payload     any            `json:"payload,omitempty"`
	State       State          `json:"status"`
	Priority    int            `json:"priority"`
	MaxRetries  int            `json:"max_retries"`
	RetryCount  int            `json:"retry_count"`
	Result      any            `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	WorkerName  string         `json:"worker,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	RunAt       time.Time      `json:"run_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`

	// Seq is the submission sequence number assigned by the store. It is
	// the tiebreak between jobs of equal priority.
	Seq uint64 `json:"-"`
}

// Clone returns a copy that shares no mutable state with j. Payload and
// Result are copied by reference; they belong to the caller and processor.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Metadata = maps.Clone(j.Metadata)
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Ready reports whether a pending job may be dispatched at now.
func (j *Job) Ready(now time.Time) bool {
	return j.State == StatePending && (j.RunAt.IsZero() || !j.RunAt.After(now))
}
