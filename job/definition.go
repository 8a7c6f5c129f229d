package job

import (
	"context"
	"encoding/json"
	"fmt"
)

// Processor performs the work for a job and returns its result. It
// receives a snapshot of the job; mutating it has no effect on the queue.
// The context is cancelled when the job times out or is cancelled, and
// processors should return promptly once it is done.
type Processor func(ctx context.Context, j *Job) (any, error)

// Typed adapts a processor written against a concrete payload type. The
// payload is used as-is when it already has type T; []byte and
// json.RawMessage payloads are JSON-decoded into T. Any other payload
// fails the attempt, so malformed input surfaces as a processor error.
func Typed[T any](fn func(ctx context.Context, payload T) (any, error)) Processor {
	return func(ctx context.Context, j *Job) (any, error) {
		var t T
		switch p := j.Payload.(type) {
		case T:
			t = p
		case nil:
		case json.RawMessage:
			if err := json.Unmarshal(p, &t); err != nil {
				return nil, fmt.Errorf("unmarshal payload for job %q: %w", j.Type, err)
			}
		case []byte:
			if err := json.Unmarshal(p, &t); err != nil {
				return nil, fmt.Errorf("unmarshal payload for job %q: %w", j.Type, err)
			}
		default:
			return nil, fmt.Errorf("job %q: payload has type %T, want %T", j.Type, j.Payload, t)
		}
		return fn(ctx, t)
	}
}
