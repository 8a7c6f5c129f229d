// Package backoff computes how long a failed job waits before it becomes
// eligible for dispatch again. Strategies are stateless and safe for
// concurrent use.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the retry delay for a job.
type Strategy interface {
	// Delay returns the wait before retry n. Retry 1 follows the first
	// failed attempt.
	Delay(retry int) time.Duration
}

// For returns explicit when it is set, otherwise a Constant strategy of
// retryDelay.
func For(explicit Strategy, retryDelay time.Duration) Strategy {
	if explicit != nil {
		return explicit
	}
	return NewConstant(retryDelay)
}

// Constant waits the same interval before every retry. It is the retry
// policy of a worker configured with a plain retry delay.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant strategy. Negative intervals become zero.
func NewConstant(interval time.Duration) *Constant {
	if interval < 0 {
		interval = 0
	}
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// Exponential doubles the wait on each retry, capped at Max.
// Delay = min(Initial * 2^(retry-1), Max).
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential creates an exponential strategy.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(retry-1), capped at Max.
func (e *Exponential) Delay(retry int) time.Duration {
	return time.Duration(exponentialBase(e.Initial, e.Max, retry))
}

// ExponentialWithJitter draws the wait uniformly from
// [0, min(Initial * 2^(retry-1), Max)] so that jobs failing together do
// not retry together.
type ExponentialWithJitter struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponentialWithJitter creates an exponential strategy with full jitter.
func NewExponentialWithJitter(initial, maxDelay time.Duration) *ExponentialWithJitter {
	return &ExponentialWithJitter{Initial: initial, Max: maxDelay}
}

// Delay returns a random duration bounded by the exponential base.
func (e *ExponentialWithJitter) Delay(retry int) time.Duration {
	base := exponentialBase(e.Initial, e.Max, retry)
	return time.Duration(rand.Float64() * base) //nolint:gosec // jitter does not need crypto rand
}

func exponentialBase(initial, maxDelay time.Duration, retry int) float64 {
	if retry < 1 {
		retry = 1
	}
	d := float64(initial) * math.Pow(2, float64(retry-1))
	if maxDelay > 0 && d > float64(maxDelay) {
		d = float64(maxDelay)
	}
	return d
}
