package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/job"
	"github.com/xraph/jobqueue/worker"
)

// start launches the dispatcher, and the janitor when retention is
// configured, the first time it is called.
func (q *Queue) start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.closed {
		return
	}
	q.started = true

	q.loops.Go(func() error {
		q.dispatchLoop()
		return nil
	})
	if q.config.RetentionEnabled() {
		q.loops.Go(func() error {
			q.janitorLoop()
			return nil
		})
	}
	q.logger.Debug("dispatcher started")
}

// notify wakes the dispatcher without blocking. Signals coalesce.
func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) dispatchLoop() {
	interval := q.config.PollInterval
	if interval <= 0 {
		interval = jobqueue.DefaultConfig().PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	due := time.NewTimer(interval)
	defer due.Stop()

	for {
		q.dispatch()

		var dueC <-chan time.Time
		if next, ok := q.store.NextRunAt(time.Now().UTC()); ok {
			due.Reset(time.Until(next))
			dueC = due.C
		}

		select {
		case <-q.stop:
			return
		case <-q.wake:
		case <-ticker.C:
		case <-dueC:
		}
	}
}

// dispatch hands every dispatchable pending job, in priority order, to the
// first worker that can take it.
func (q *Queue) dispatch() {
	if q.workers.Len() == 0 {
		return
	}
	for _, j := range q.store.Ready(time.Now().UTC()) {
		select {
		case <-q.stop:
			return
		default:
		}
		w, ok := q.workers.Acquire(j)
		if !ok {
			continue
		}
		q.startJob(w, j)
	}
}

// startJob moves j to running on w and launches the attempt.
func (q *Queue) startJob(w *worker.Worker, j *job.Job) {
	key := j.ID.String()

	// The holder is recorded first so a cancel racing the transition can
	// always reach the worker.
	q.mu.Lock()
	q.holders[key] = w
	q.mu.Unlock()

	now := time.Now().UTC()
	snap, err := q.store.Update(j.ID, func(cur *job.Job) error {
		if !cur.State.CanTransition(job.StateRunning) {
			return fmt.Errorf("%w: job is %s", jobqueue.ErrInvalidState, cur.State)
		}
		cur.State = job.StateRunning
		cur.StartedAt = &now
		cur.WorkerName = w.Name()
		return nil
	})
	if err != nil {
		q.mu.Lock()
		delete(q.holders, key)
		q.mu.Unlock()
		w.Release(j.ID)
		q.logger.Debug("job changed before start",
			slog.String("job_id", key),
			slog.String("error", err.Error()),
		)
		return
	}
	w.Claim(j.ID)

	q.logger.Debug("job dispatched",
		slog.String("job_id", key),
		slog.String("job_type", snap.Type),
		slog.String("worker", w.Name()),
		slog.Int("priority", snap.Priority),
	)
	q.extensions.EmitJobStarted(context.Background(), snap)

	q.inflight.Add(1)
	go func() {
		defer q.inflight.Done()
		w.Process(q.jobCtx, snap, q.updateJobStatus)
	}()
}

// updateJobStatus applies an attempt's outcome to the registry. It is the
// only place a running job leaves the running state other than CancelJob.
// Finished states are final: outcomes for jobs that are no longer running
// are discarded.
func (q *Queue) updateJobStatus(out worker.Outcome) {
	defer q.notify()

	key := out.JobID.String()
	q.mu.Lock()
	delete(q.holders, key)
	q.mu.Unlock()

	now := time.Now().UTC()
	snap, err := q.store.Update(out.JobID, func(j *job.Job) error {
		if j.State != job.StateRunning {
			return fmt.Errorf("%w: job is %s", jobqueue.ErrInvalidState, j.State)
		}
		switch out.Kind {
		case worker.KindCompleted:
			j.State = job.StateCompleted
			j.Result = out.Result
			j.Error = ""
			j.CompletedAt = &now
		case worker.KindRetry:
			j.State = job.StatePending
			j.RetryCount++
			j.Error = out.Err.Error()
			j.RunAt = out.RetryAt
		case worker.KindFailed:
			j.State = job.StateFailed
			j.Error = out.Err.Error()
			j.CompletedAt = &now
		case worker.KindCancelled:
			j.State = job.StateCancelled
			j.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, jobqueue.ErrInvalidState) {
			q.logger.Error("failed to record job outcome",
				slog.String("job_id", key),
				slog.String("error", err.Error()),
			)
			return
		}
		q.logger.Debug("discarding outcome for finished job",
			slog.String("job_id", key),
			slog.String("outcome", out.Kind.String()),
		)
		return
	}

	ctx := context.Background()
	switch out.Kind {
	case worker.KindCompleted:
		q.logger.Info("job completed",
			slog.String("job_id", key),
			slog.String("job_type", snap.Type),
			slog.String("worker", out.Worker),
			slog.Duration("elapsed", out.Elapsed),
		)
		q.extensions.EmitJobCompleted(ctx, snap, out.Elapsed)
	case worker.KindRetry:
		q.logger.Info("job scheduled for retry",
			slog.String("job_id", key),
			slog.String("job_type", snap.Type),
			slog.Int("attempt", snap.RetryCount),
			slog.Int("max_retries", snap.MaxRetries),
			slog.Time("run_at", snap.RunAt),
		)
		q.extensions.EmitJobRetrying(ctx, snap, snap.RetryCount, snap.RunAt)
	case worker.KindFailed:
		q.logger.Warn("job failed after exhausting retries",
			slog.String("job_id", key),
			slog.String("job_type", snap.Type),
			slog.Int("retry_count", snap.RetryCount),
			slog.String("error", snap.Error),
		)
		q.extensions.EmitJobFailed(ctx, snap, out.Err)
	case worker.KindCancelled:
		q.extensions.EmitJobCancelled(ctx, snap)
	}
}

func (q *Queue) janitorLoop() {
	interval := q.config.JanitorInterval
	if interval <= 0 {
		interval = jobqueue.DefaultConfig().JanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			q.Prune()
		}
	}
}
