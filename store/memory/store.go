// Package memory provides the in-memory job registry. It is the only
// store: job state is volatile and lives for the lifetime of the process.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/id"
	"github.com/xraph/jobqueue/job"
)

// Ensure Store implements job.Store at compile time.
var _ job.Store = (*Store)(nil)

// Store is a fully in-memory implementation of job.Store.
// Safe for concurrent access. Records never leave the store by pointer;
// every read and every Update result is a clone.
type Store struct {
	mu sync.RWMutex

	jobs map[string]*job.Job
	seq  uint64
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		jobs: make(map[string]*job.Job),
	}
}

// Insert adds a new job and assigns its submission sequence.
func (m *Store) Insert(j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := j.ID.String()
	if _, exists := m.jobs[key]; exists {
		return jobqueue.ErrJobAlreadyExists
	}
	m.seq++
	j.Seq = m.seq
	m.jobs[key] = j.Clone()
	return nil
}

// Get returns a snapshot of the job.
func (m *Store) Get(jobID id.JobID) (*job.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, false
	}
	return j.Clone(), true
}

// Update applies fn to a working copy of the job and commits it only if
// fn succeeds.
func (m *Store) Update(jobID id.JobID, fn func(j *job.Job) error) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := jobID.String()
	cur, ok := m.jobs[key]
	if !ok {
		return nil, jobqueue.ErrJobNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.jobs[key] = next
	return next.Clone(), nil
}

// Ready returns dispatchable pending jobs: priority DESC, Seq ASC.
func (m *Store) Ready(now time.Time) []*job.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make([]*job.Job, 0)
	for _, j := range m.jobs {
		if j.Ready(now) {
			candidates = append(candidates, j.Clone())
		}
	}

	slices.SortFunc(candidates, func(a, b *job.Job) int {
		if a.Priority != b.Priority {
			return b.Priority - a.Priority
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return candidates
}

// NextRunAt returns the earliest future RunAt among pending jobs.
func (m *Store) NextRunAt(now time.Time) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var next time.Time
	found := false
	for _, j := range m.jobs {
		if j.State != job.StatePending || !j.RunAt.After(now) {
			continue
		}
		if !found || j.RunAt.Before(next) {
			next = j.RunAt
			found = true
		}
	}
	return next, found
}

// Stats counts jobs by state in a single pass.
func (m *Store) Stats() job.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s job.Stats
	for _, j := range m.jobs {
		s.Add(j.State)
	}
	return s
}

// Evict removes finished jobs that completed before cutoff, then trims the
// remaining finished jobs to keep, oldest first. A zero cutoff skips the
// age check.
func (m *Store) Evict(cutoff time.Time, keep int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	finished := make([]*job.Job, 0)
	for key, j := range m.jobs {
		if !j.State.IsTerminal() {
			continue
		}
		done := finishedAt(j)
		if !cutoff.IsZero() && done.Before(cutoff) {
			delete(m.jobs, key)
			removed++
			continue
		}
		finished = append(finished, j)
	}

	if keep > 0 && len(finished) > keep {
		slices.SortFunc(finished, func(a, b *job.Job) int {
			return finishedAt(a).Compare(finishedAt(b))
		})
		for _, j := range finished[:len(finished)-keep] {
			delete(m.jobs, j.ID.String())
			removed++
		}
	}
	return removed
}

// Len returns the number of jobs held, in any state.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

func finishedAt(j *job.Job) time.Time {
	if j.CompletedAt != nil {
		return *j.CompletedAt
	}
	return j.CreatedAt
}
