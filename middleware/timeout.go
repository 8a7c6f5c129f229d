package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/job"
)

// Timeout returns middleware that races the rest of the chain against a
// deadline of d and against cancellation of the incoming context.
//
// The chain runs in its own goroutine. When the deadline passes the
// context handed to the processor is cancelled with cause
// jobqueue.ErrJobTimeout and Timeout returns that error at once, even if
// the processor ignores its context. A cancelled parent context returns
// its cause the same way. A zero d disables only the deadline.
//
// Errors returned by the processor after its context ended are replaced by
// the context's cause, so a processor that gives up on ctx.Done() reports
// "Job timeout" rather than context.DeadlineExceeded.
//
// A panic in the chain is carried back and re-raised in the caller's
// goroutine along with the stack of the original panic, so [Recover]
// further out still handles it. A panic after Timeout has returned is
// dropped.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) (any, error) {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeoutCause(ctx, d, jobqueue.ErrJobTimeout)
			defer cancel()
		}

		type attempt struct {
			result any
			err    error
			panic  *panicError
		}
		done := make(chan attempt, 1)
		go func() {
			var a attempt
			defer func() {
				if r := recover(); r != nil {
					a = attempt{panic: &panicError{value: r, stack: debug.Stack()}}
				}
				done <- a
			}()
			a.result, a.err = next(ctx)
		}()

		select {
		case a := <-done:
			if a.panic != nil {
				panic(a.panic)
			}
			if a.err != nil && ctx.Err() != nil {
				return nil, context.Cause(ctx)
			}
			return a.result, a.err
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
}

// panicError carries a panic recovered in another goroutine.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprint(p.value) }
