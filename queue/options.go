package queue

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/ext"
	"github.com/xraph/jobqueue/job"
	mw "github.com/xraph/jobqueue/middleware"
)

// Option configures a Queue.
type Option func(*Queue)

// WithConfig replaces the queue configuration. Unset fields keep their
// defaults; see [jobqueue.Config.WithDefaults].
func WithConfig(cfg jobqueue.Config) Option {
	return func(q *Queue) { q.config = cfg.WithDefaults() }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithStore sets the job registry backend. Defaults to an in-memory store.
func WithStore(s job.Store) Option {
	return func(q *Queue) { q.store = s }
}

// WithExtension registers a lifecycle extension.
func WithExtension(e ext.Extension) Option {
	return func(q *Queue) { q.pendingExts = append(q.pendingExts, e) }
}

// WithMiddleware adds middleware to every worker's chain. It runs inside
// the default recover, tracing, metrics and logging middleware and outside
// the attempt timeout.
func WithMiddleware(m mw.Middleware) Option {
	return func(q *Queue) { q.mws = append(q.mws, m) }
}

// WithPollInterval sets the fallback dispatch tick.
func WithPollInterval(d time.Duration) Option {
	return func(q *Queue) { q.config.PollInterval = d }
}

// WithRetention evicts finished jobs older than ttl and caps the number of
// finished jobs kept at maxHistory. Zero disables either limit.
func WithRetention(ttl time.Duration, maxHistory int) Option {
	return func(q *Queue) {
		q.config.RetentionTTL = ttl
		q.config.MaxHistory = maxHistory
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the tracing
// middleware. If not set, the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(q *Queue) { q.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the metrics
// middleware, the lifecycle metrics extension and the queue depth gauge.
// If not set, the global provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(q *Queue) { q.meterProvider = mp }
}
