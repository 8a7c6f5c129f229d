// Package worker provides named job executors with bounded concurrency.
//
// A [Worker] wraps a [job.Processor] with a per-attempt timeout, a retry
// policy, an optional start-rate limit and an optional job-type allow-list.
// It tracks the jobs it is running, hands each one a cancellable context,
// and turns every attempt into an [Outcome] that the queue applies to the
// job registry. Workers never mutate job records themselves.
//
// [Registry] keeps workers in registration order; the dispatcher offers a
// job to each worker in that order and the first one with a free slot
// takes it.
package worker
