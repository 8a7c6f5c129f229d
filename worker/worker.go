package worker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/backoff"
	"github.com/xraph/jobqueue/id"
	"github.com/xraph/jobqueue/job"
	"github.com/xraph/jobqueue/middleware"
)

// Config controls how a worker executes jobs.
type Config struct {
	// Concurrency is the maximum number of jobs running at once.
	// Values below 1 are treated as 1.
	Concurrency int

	// Timeout bounds a single attempt. Zero disables the timer.
	Timeout time.Duration

	// RetryDelay is the wait before a failed job becomes dispatchable
	// again.
	RetryDelay time.Duration

	// Backoff overrides RetryDelay with a custom strategy.
	Backoff backoff.Strategy

	// RateLimit is the maximum sustained job starts per second. Zero
	// disables rate limiting.
	RateLimit float64

	// RateBurst is the token bucket size. Defaults to 1 when RateLimit is
	// set.
	RateBurst int

	// JobTypes restricts the worker to the listed job types. Empty means
	// the worker accepts every type.
	JobTypes []string
}

func (c Config) normalize() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	c.JobTypes = slices.Clone(c.JobTypes)
	return c
}

// run is the bookkeeping for one job held by a worker.
type run struct {
	cancel    context.CancelCauseFunc
	cancelled bool
	claimed   bool
}

// Worker executes jobs with a single processor. It is safe for concurrent
// use.
type Worker struct {
	id        id.WorkerID
	name      string
	cfg       Config
	processor job.Processor
	mw        middleware.Middleware
	strategy  backoff.Strategy
	limiter   *rate.Limiter

	mu      sync.Mutex
	running map[string]*run
}

// New creates a worker. The middleware wrap every attempt, outermost
// first; the attempt timeout is always applied innermost.
func New(name string, p job.Processor, cfg Config, mws ...middleware.Middleware) *Worker {
	cfg = cfg.normalize()

	chain := append(slices.Clone(mws), middleware.Timeout(cfg.Timeout))
	w := &Worker{
		id:        id.NewWorkerID(),
		name:      name,
		cfg:       cfg,
		processor: p,
		mw:        middleware.Chain(chain...),
		strategy:  backoff.For(cfg.Backoff, cfg.RetryDelay),
		running:   make(map[string]*run, cfg.Concurrency),
	}
	if cfg.RateLimit > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return w
}

// ID returns the worker's unique identifier.
func (w *Worker) ID() id.WorkerID { return w.id }

// Name returns the name the worker was registered under.
func (w *Worker) Name() string { return w.name }

// Config returns the normalized configuration.
func (w *Worker) Config() Config { return w.cfg }

// Accepts reports whether the worker handles jobs of the given type.
func (w *Worker) Accepts(jobType string) bool {
	return len(w.cfg.JobTypes) == 0 || slices.Contains(w.cfg.JobTypes, jobType)
}

// TryAcquire reserves a slot for j. It fails when the job type is not
// accepted, the worker is at capacity, or the rate limiter has no token.
// A successful caller must follow up with Process or Release.
//
// The rate token is only checked here. It is spent by Claim or Process,
// so a slot given back with Release costs no token. Claim before the next
// TryAcquire on the same worker.
func (w *Worker) TryAcquire(j *job.Job) bool {
	if !w.Accepts(j.Type) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.running) >= w.cfg.Concurrency {
		return false
	}
	if w.limiter != nil && w.limiter.Tokens() < 1 {
		return false
	}
	w.running[j.ID.String()] = &run{}
	return true
}

// Claim spends the rate token for a slot reserved by TryAcquire. It is a
// no-op if the job is not held or was already claimed.
func (w *Worker) Claim(jobID id.JobID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if r, ok := w.running[jobID.String()]; ok {
		w.claim(r)
	}
}

// claim must be called with w.mu held.
func (w *Worker) claim(r *run) {
	if r.claimed {
		return
	}
	r.claimed = true
	if w.limiter != nil {
		w.limiter.Reserve()
	}
}

// Release frees a slot reserved by TryAcquire without running the job.
func (w *Worker) Release(jobID id.JobID) {
	w.release(jobID.String())
}

// release removes the job from the running set and reports whether it had
// been cancelled.
func (w *Worker) release(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.running[key]
	if !ok {
		return false
	}
	delete(w.running, key)
	return r.cancelled
}

// Cancel flags a running job as cancelled and cancels its context with
// jobqueue.ErrJobCancelled. It returns false if the worker does not hold
// the job.
func (w *Worker) Cancel(jobID id.JobID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.running[jobID.String()]
	if !ok {
		return false
	}
	r.cancelled = true
	if r.cancel != nil {
		r.cancel(jobqueue.ErrJobCancelled)
	}
	return true
}

// Running returns the number of jobs currently held.
func (w *Worker) Running() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.running)
}

// RunningIDs returns the ids of the jobs currently held.
func (w *Worker) RunningIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]string, 0, len(w.running))
	for k := range w.running {
		ids = append(ids, k)
	}
	slices.Sort(ids)
	return ids
}

// Process runs one attempt of j and calls report exactly once with the
// outcome. The slot is released before report is called on every path,
// including panics in middleware. ctx is the parent of the attempt
// context; cancelling it cancels the processor.
func (w *Worker) Process(ctx context.Context, j *job.Job, report func(Outcome)) {
	key := j.ID.String()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	w.mu.Lock()
	r, ok := w.running[key]
	if !ok {
		r = &run{}
		w.running[key] = r
	}
	r.cancel = cancel
	w.claim(r)
	if r.cancelled {
		cancel(jobqueue.ErrJobCancelled)
	}
	w.mu.Unlock()

	var (
		result any
		err    error
	)
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result, err = nil, fmt.Errorf("panic in job %s: %v", j.Type, rec)
		}
		cancelled := w.release(key)
		report(w.outcome(j, result, err, cancelled, time.Since(start)))
	}()

	result, err = w.mw(ctx, j, func(ctx context.Context) (any, error) {
		return w.processor(ctx, j)
	})
}

// outcome decides what an attempt means for the job.
func (w *Worker) outcome(j *job.Job, result any, err error, cancelled bool, elapsed time.Duration) Outcome {
	out := Outcome{
		JobID:   j.ID,
		Worker:  w.name,
		Elapsed: elapsed,
	}

	switch {
	case cancelled:
		out.Kind = KindCancelled
		out.Err = jobqueue.ErrJobCancelled
	case err == nil:
		out.Kind = KindCompleted
		out.Result = result
	case j.RetryCount < j.MaxRetries:
		out.Kind = KindRetry
		out.Err = err
		out.RetryAt = time.Now().UTC().Add(w.strategy.Delay(j.RetryCount + 1))
	default:
		out.Kind = KindFailed
		out.Err = err
	}
	return out
}
