// Package middleware provides composable middleware around processor calls.
//
// A [Middleware] wraps the call to a job's processor. Middleware are
// composed into a chain using [Chain] and run on every attempt. The first
// middleware in the slice is the outermost wrapper.
//
//	// logging → recover → processor
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs job type, id, duration, and outcome of each attempt
//   - [Recover]: catches panics and converts them to errors
//   - [Timeout]: races the processor against the worker timeout and the job's cancellation
//   - [Tracing]: wraps each attempt in an OpenTelemetry span
//   - [Metrics]: records per-type duration and outcome counters
//
// Workers always install [Timeout] as the innermost middleware.
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, j *job.Job, next middleware.Handler) (any, error) {
//	        // pre-processing
//	        result, err := next(ctx)
//	        // post-processing
//	        return result, err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
