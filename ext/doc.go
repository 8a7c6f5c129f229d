// Package ext defines the extension system for the job queue.
//
// Extensions are notified of job lifecycle events and can react to them:
// recording metrics, writing audit logs, pushing notifications. Each hook
// is a separate interface so extensions opt in only to the events they
// care about. Hooks replace ad-hoc event emitters with typed callbacks.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	func (e *MyExtension) OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error {
//	    log.Printf("job %s completed in %s", j.ID, elapsed)
//	    return nil
//	}
//
// # Job Lifecycle Hooks
//
//   - [JobEnqueued]: job was accepted into the registry
//   - [JobStarted]: a worker picked the job up
//   - [JobCompleted]: the processor returned successfully
//   - [JobRetrying]: an attempt failed and the job will run again
//   - [JobFailed]: an attempt failed with no retries remaining
//   - [JobCancelled]: the job was cancelled
//
// # Other Hooks
//
//   - [Shutdown]: the queue is closing
//
// Hooks receive snapshots. Errors returned by hooks are logged and never
// affect the job.
package ext
