package job

import (
	"maps"
	"time"
)

// Options configures a single submission.
type Options struct {
	// Priority determines dispatch ordering. Higher values run first.
	Priority int

	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries int

	// Metadata is stored with the job and never interpreted by the queue.
	Metadata map[string]any

	// RunAt delays the first dispatch. Zero means immediate.
	RunAt time.Time
}

// DefaultOptions returns Options with the defaults of a plain submission.
func DefaultOptions() Options {
	return Options{
		Priority:   0,
		MaxRetries: 3,
	}
}

// Option is a functional option applied at submission time.
type Option func(*Options)

// WithPriority sets the job priority. Higher values are processed first.
func WithPriority(p int) Option {
	return func(o *Options) { o.Priority = p }
}

// WithMaxRetries sets the maximum number of retry attempts. Negative
// values are treated as zero.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		if n < 0 {
			n = 0
		}
		o.MaxRetries = n
	}
}

// WithMetadata merges free-form annotations into the job metadata.
func WithMetadata(md map[string]any) Option {
	return func(o *Options) {
		if o.Metadata == nil {
			o.Metadata = make(map[string]any, len(md))
		}
		maps.Copy(o.Metadata, md)
	}
}

// WithRunAt schedules the first dispatch for a specific time.
func WithRunAt(t time.Time) Option {
	return func(o *Options) { o.RunAt = t }
}

// WithDelay schedules the first dispatch d from now.
func WithDelay(d time.Duration) Option {
	return func(o *Options) { o.RunAt = time.Now().Add(d) }
}
