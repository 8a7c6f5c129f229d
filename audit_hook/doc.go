// Package audithook is a job queue extension that turns lifecycle events
// into an audit trail.
//
// Every job lifecycle hook emits a structured [AuditEvent] through the
// [Recorder] interface. The extension assigns a severity (info for normal
// operations, warning for retries and cancellations, critical for terminal
// failures) and metadata such as job type, priority, worker, elapsed time
// and error.
//
// # Usage
//
//	q := queue.New(queue.WithExtension(
//	    audithook.New(audithook.LogRecorder(logger)),
//	))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionJobFailed,
//	        audithook.ActionJobCancelled,
//	    ),
//	)
package audithook
