// Package job defines the job record, its state machine, submission
// options, the processor contract and the registry store interface.
//
// # Job Entity
//
// A [Job] represents one unit of background work. It carries an opaque
// payload and progresses through a state machine:
//
//	pending → running → completed
//	pending → running → pending (retry, after the retry delay) → running → ...
//	pending → running → failed
//	pending → cancelled
//	running → cancelled
//
// completed, failed and cancelled are terminal.
//
// Fields of note:
//   - Type: a tag for logging and optional worker routing
//   - Priority: higher values are dispatched first, ties by submission order
//   - MaxRetries / RetryCount: controls the retry budget
//   - RunAt: earliest time the job may be dispatched
//   - Metadata: free-form caller annotations, never interpreted
//
// # Processors
//
// A [Processor] performs the actual work. Use [Typed] to write processors
// against a concrete payload type:
//
//	var Audit = job.Typed(func(ctx context.Context, in AuditRequest) (any, error) {
//	    return auditor.Run(ctx, in.AccountID)
//	})
package job
