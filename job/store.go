package job

import (
	"time"

	"github.com/xraph/jobqueue/id"
)

// Stats is a point-in-time count of jobs partitioned by state.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Add counts one job in state s.
func (s *Stats) Add(st State) {
	s.Total++
	switch st {
	case StatePending:
		s.Pending++
	case StateRunning:
		s.Running++
	case StateCompleted:
		s.Completed++
	case StateFailed:
		s.Failed++
	case StateCancelled:
		s.Cancelled++
	}
}

// Store is the job registry contract. Implementations must be safe for
// concurrent use and must never hand out pointers into their own state.
type Store interface {
	// Insert adds a new job and assigns its Seq.
	Insert(j *Job) error

	// Get returns a snapshot of the job, or false if it is unknown.
	Get(jobID id.JobID) (*Job, bool)

	// Update applies fn to the stored job under the store's write lock and
	// returns a snapshot of the result. If fn returns an error nothing is
	// changed. This is the single mutation point for existing jobs.
	Update(jobID id.JobID, fn func(j *Job) error) (*Job, error)

	// Ready returns snapshots of pending jobs dispatchable at now, ordered
	// by priority (descending) then Seq (ascending).
	Ready(now time.Time) []*Job

	// NextRunAt returns the earliest RunAt among pending jobs that are not
	// yet dispatchable at now.
	NextRunAt(now time.Time) (time.Time, bool)

	// Stats counts jobs by state in a single pass.
	Stats() Stats

	// Evict removes terminal jobs that finished before cutoff, then the
	// oldest terminal jobs beyond keep (keep <= 0 means no cap). It
	// returns the number of jobs removed.
	Evict(cutoff time.Time, keep int) int
}
