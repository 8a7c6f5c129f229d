package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/ext"
	"github.com/xraph/jobqueue/id"
	"github.com/xraph/jobqueue/job"
	mw "github.com/xraph/jobqueue/middleware"
	"github.com/xraph/jobqueue/observability"
	"github.com/xraph/jobqueue/store/memory"
	"github.com/xraph/jobqueue/worker"
)

const instrumentationName = "github.com/xraph/jobqueue"

// Queue accepts jobs, routes them to registered workers and tracks their
// state. Create one with New; all methods are safe for concurrent use.
type Queue struct {
	config     jobqueue.Config
	logger     *slog.Logger
	store      job.Store
	extensions *ext.Registry
	workers    *worker.Registry
	chain      []mw.Middleware

	// Option inputs consumed by New.
	pendingExts    []ext.Extension
	mws            []mw.Middleware
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	statsReg       metric.Registration

	// jobCtx parents every attempt context; it is cancelled on Close.
	jobCtx    context.Context
	cancelJob context.CancelCauseFunc

	wake     chan struct{}
	stop     chan struct{}
	loops    errgroup.Group
	inflight sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
	holders map[string]*worker.Worker
}

// New creates a Queue with the given options.
func New(opts ...Option) *Queue {
	q := &Queue{
		config:  jobqueue.DefaultConfig(),
		logger:  slog.Default(),
		workers: worker.NewRegistry(),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		holders: make(map[string]*worker.Worker),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.config = q.config.WithDefaults()
	if q.store == nil {
		q.store = memory.New()
	}
	q.jobCtx, q.cancelJob = context.WithCancelCause(context.Background())

	q.extensions = ext.NewRegistry(q.logger)

	// Build tracing and metrics middleware (custom provider or global).
	var tracingMw, metricsMw mw.Middleware
	if q.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(q.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}
	mp := q.meterProvider
	if mp != nil {
		metricsMw = mw.MetricsWithMeter(mp.Meter(instrumentationName))
	} else {
		metricsMw = mw.Metrics()
		mp = otel.GetMeterProvider()
	}

	obsMeter := mp.Meter(instrumentationName + "/observability")
	q.extensions.Register(observability.NewMetricsExtensionWithMeter(obsMeter))
	if reg, err := observability.ObserveStats(obsMeter, q.GetQueueStats); err != nil {
		q.logger.Warn("queue depth gauge unavailable", slog.String("error", err.Error()))
	} else {
		q.statsReg = reg
	}
	for _, e := range q.pendingExts {
		q.extensions.Register(e)
	}
	q.pendingExts = nil

	// Default stack: recover → tracing → metrics → logging → user middleware.
	// Each worker appends its own attempt timeout innermost.
	q.chain = append([]mw.Middleware{
		mw.Recover(q.logger),
		tracingMw,
		metricsMw,
		mw.Logging(q.logger),
	}, q.mws...)

	return q
}

// Config returns the queue configuration.
func (q *Queue) Config() jobqueue.Config { return q.config }

// Extensions returns the extension registry.
func (q *Queue) Extensions() *ext.Registry { return q.extensions }

// AddJob submits a job and returns its id. The job starts pending and is
// dispatched once a worker has a free slot. Unless overridden by opts the
// job has priority 0 and the configured default retry budget.
//
// AddJob always succeeds. Jobs submitted after Close are recorded but
// never dispatched.
func (q *Queue) AddJob(jobType string, payload any, opts ...job.Option) id.JobID {
	o := job.DefaultOptions()
	o.MaxRetries = max(q.config.DefaultMaxRetries, 0)
	for _, opt := range opts {
		opt(&o)
	}

	now := time.Now().UTC()
	j := &job.Job{
		ID:         id.NewJobID(),
		Type:       jobType,
		Payload:    payload,
		State:      job.StatePending,
		Priority:   o.Priority,
		MaxRetries: o.MaxRetries,
		Metadata:   o.Metadata,
		CreatedAt:  now,
		RunAt:      now,
	}
	if j.Metadata == nil {
		j.Metadata = map[string]any{}
	}
	if !o.RunAt.IsZero() {
		j.RunAt = o.RunAt.UTC()
	}

	if err := q.store.Insert(j); err != nil {
		// Ids are freshly generated; a collision means the store is broken.
		q.logger.Error("failed to insert job",
			slog.String("job_id", j.ID.String()),
			slog.String("job_type", jobType),
			slog.String("error", err.Error()),
		)
		return j.ID
	}

	q.logger.Debug("job added",
		slog.String("job_id", j.ID.String()),
		slog.String("job_type", jobType),
		slog.Int("priority", j.Priority),
	)
	q.extensions.EmitJobEnqueued(context.Background(), j.Clone())

	q.start()
	q.notify()
	return j.ID
}

// RegisterWorker registers a processor under name. Registering the same
// name again replaces the worker's processor and configuration while
// keeping its place in the dispatch order; attempts already running on the
// old worker finish there.
func (q *Queue) RegisterWorker(name string, p job.Processor, cfg worker.Config) {
	w := worker.New(name, p, cfg, q.chain...)
	replaced := q.workers.Register(w)

	q.logger.Info("worker registered",
		slog.String("worker", name),
		slog.String("worker_id", w.ID().String()),
		slog.Int("concurrency", w.Config().Concurrency),
		slog.Bool("replaced", replaced != nil),
	)

	q.start()
	q.notify()
}

// Workers returns the registered worker names in dispatch order.
func (q *Queue) Workers() []string { return q.workers.Names() }

// Worker returns the worker registered under name.
func (q *Queue) Worker(name string) (*worker.Worker, bool) { return q.workers.Get(name) }

// GetJobStatus returns a snapshot of the job, or nil if the id is unknown
// or has been evicted.
func (q *Queue) GetJobStatus(jobID id.JobID) *job.Job {
	j, ok := q.store.Get(jobID)
	if !ok {
		return nil
	}
	return j
}

// CancelJob cancels a pending or running job and reports whether it did.
// It returns false for unknown ids and for jobs that already finished.
func (q *Queue) CancelJob(jobID id.JobID) bool {
	now := time.Now().UTC()
	var prev job.State
	snap, err := q.store.Update(jobID, func(j *job.Job) error {
		if !j.State.CanTransition(job.StateCancelled) {
			return fmt.Errorf("%w: job is %s", jobqueue.ErrInvalidState, j.State)
		}
		prev = j.State
		j.State = job.StateCancelled
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		q.logger.Debug("cancel rejected",
			slog.String("job_id", jobID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}

	if prev == job.StateRunning {
		q.mu.Lock()
		w := q.holders[jobID.String()]
		q.mu.Unlock()
		if w != nil {
			w.Cancel(jobID)
		}
	}

	q.logger.Info("job cancelled",
		slog.String("job_id", jobID.String()),
		slog.String("job_type", snap.Type),
		slog.String("previous_state", string(prev)),
	)
	q.extensions.EmitJobCancelled(context.Background(), snap)
	return true
}

// GetQueueStats returns the number of jobs in each state.
func (q *Queue) GetQueueStats() job.Stats { return q.store.Stats() }

// Prune applies the retention policy immediately and returns the number of
// jobs evicted.
func (q *Queue) Prune() int {
	var cutoff time.Time
	if q.config.RetentionTTL > 0 {
		cutoff = time.Now().UTC().Add(-q.config.RetentionTTL)
	}
	n := q.store.Evict(cutoff, q.config.MaxHistory)
	if n > 0 {
		q.logger.Debug("evicted finished jobs", slog.Int("count", n))
	}
	return n
}

// Close stops dispatching and waits for running attempts to finish. If ctx
// ends first (or ShutdownTimeout passes when ctx has no deadline), running
// jobs are cancelled and Close returns the context's error. Close is
// idempotent.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.logger.Info("job queue closing")
	close(q.stop)

	if _, ok := ctx.Deadline(); !ok && q.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.config.ShutdownTimeout)
		defer cancel()
	}

	_ = q.loops.Wait()

	done := make(chan struct{})
	go func() {
		q.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		q.logger.Info("job queue closed gracefully")
	case <-ctx.Done():
		err = ctx.Err()
		q.logger.Warn("job queue shutdown timed out, cancelling running jobs")
		for _, jobID := range q.runningJobIDs() {
			q.CancelJob(jobID)
		}
		<-done
	}

	q.cancelJob(jobqueue.ErrQueueClosed)
	q.extensions.EmitShutdown(ctx)
	if q.statsReg != nil {
		if uerr := q.statsReg.Unregister(); uerr != nil {
			q.logger.Warn("failed to unregister queue depth gauge", slog.String("error", uerr.Error()))
		}
	}
	return err
}

// runningJobIDs returns the ids of jobs currently held by a worker.
func (q *Queue) runningJobIDs() []id.JobID {
	q.mu.Lock()
	keys := make([]string, 0, len(q.holders))
	for k := range q.holders {
		keys = append(keys, k)
	}
	q.mu.Unlock()

	ids := make([]id.JobID, 0, len(keys))
	for _, k := range keys {
		jobID, err := id.ParseJobID(k)
		if err != nil {
			q.logger.Warn("invalid running job id", slog.String("job_id", k))
			continue
		}
		ids = append(ids, jobID)
	}
	return ids
}
