// Package jobqueue provides an in-process asynchronous job queue with a
// bounded-concurrency worker pool. It runs long-lived background tasks
// outside the request/response cycle of the host application.
//
// The queue is a library, not a service. Construct an explicit instance,
// register named workers with their processor functions, and submit jobs.
// State lives only in process memory and is lost on restart.
//
// # Quick Start
//
//	q := queue.New(queue.WithLogger(logger))
//	defer q.Close(ctx)
//
//	q.RegisterWorker("audit", auditProcessor, worker.Config{
//	    Concurrency: 2,
//	    Timeout:     30 * time.Second,
//	    RetryDelay:  5 * time.Second,
//	})
//
//	jobID := q.AddJob("audit", payload, job.WithPriority(5))
//	snapshot := q.GetJobStatus(jobID)
//
// # Architecture
//
// The [queue.Queue] owns the job registry and the worker registry. Its
// dispatch loop scans pending jobs in priority order and hands each one
// to the first worker with spare capacity. Workers run the processor
// through a middleware chain that enforces the per-job timeout, then
// report an outcome back to the queue, which is the only writer of job
// state.
//
// All job IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package jobqueue
