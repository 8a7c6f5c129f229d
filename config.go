package jobqueue

import "time"

// Config holds configuration for a job queue.
type Config struct {
	// PollInterval is the fallback dispatch tick. The dispatcher also wakes
	// immediately on submission, worker registration and job completion.
	PollInterval time.Duration

	// ShutdownTimeout bounds how long Close waits for in-flight jobs when
	// the caller's context carries no deadline.
	ShutdownTimeout time.Duration

	// RetentionTTL is how long completed, failed and cancelled jobs stay
	// in the registry. Zero keeps them until the process exits.
	RetentionTTL time.Duration

	// MaxHistory caps the number of finished jobs kept in the registry.
	// The oldest are evicted first. Zero means no cap.
	MaxHistory int

	// JanitorInterval is how often retention is enforced.
	JanitorInterval time.Duration

	// DefaultMaxRetries is applied to jobs submitted without an explicit
	// retry budget. Zero takes the default of 3; a negative value disables
	// retries.
	DefaultMaxRetries int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:      1 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		JanitorInterval:   1 * time.Minute,
		DefaultMaxRetries: 3,
	}
}

// RetentionEnabled reports whether the janitor has anything to enforce.
func (c Config) RetentionEnabled() bool {
	return c.RetentionTTL > 0 || c.MaxHistory > 0
}

// WithDefaults returns c with every unset field taken from DefaultConfig.
// Retention limits are left as given since zero disables them.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.JanitorInterval <= 0 {
		c.JanitorInterval = def.JanitorInterval
	}
	if c.DefaultMaxRetries == 0 {
		c.DefaultMaxRetries = def.DefaultMaxRetries
	}
	return c
}
