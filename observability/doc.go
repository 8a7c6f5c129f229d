// Package observability provides OpenTelemetry-based lifecycle metrics for
// the job queue. The MetricsExtension implements lifecycle hooks to record
// system-wide counters for job enqueue, start, completion, failure, retry
// and cancellation events. ObserveStats exports the registry's per-state
// counts as asynchronous gauges.
//
// For per-attempt tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
