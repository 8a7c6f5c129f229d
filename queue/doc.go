// Package queue implements the in-process job queue: a registry of jobs, a
// set of named workers, and a dispatcher that matches the two.
//
// # Quick Start
//
//	q := queue.New(queue.WithLogger(logger))
//	defer q.Close(context.Background())
//
//	q.RegisterWorker("auditor", auditProcessor, worker.Config{
//	    Concurrency: 2,
//	    Timeout:     5 * time.Minute,
//	    RetryDelay:  5 * time.Second,
//	})
//
//	jobID := q.AddJob("audit", payload, job.WithPriority(10))
//	status := q.GetJobStatus(jobID)
//
// # Dispatch
//
// A dispatcher goroutine starts with the first submission or worker
// registration. It wakes on every submission, registration and finished
// attempt, when the earliest delayed job becomes due, and on a fallback
// tick of [jobqueue.Config.PollInterval]. Each cycle takes the dispatchable
// pending jobs in priority order (ties in submission order) and offers each
// one to the workers in registration order; the first worker with a free
// slot runs it.
//
// # Retries and Timeouts
//
// A failed attempt with retries left puts the job back to pending with a
// RunAt in the future; it is counted as pending and can be cancelled while
// it waits. An attempt that outlives the worker's timeout fails with the
// message "Job timeout" and follows the same retry path.
//
// # Cancellation
//
// [Queue.CancelJob] moves a pending or running job to cancelled. A running
// job's processor sees its context cancelled with cause
// [jobqueue.ErrJobCancelled]. Finished states are final: an attempt that
// returns after its job was cancelled is discarded.
//
// # Retention
//
// Finished jobs stay queryable until evicted. With a RetentionTTL or
// MaxHistory configured, a janitor goroutine evicts old finished jobs on
// every JanitorInterval.
package queue
