package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/jobqueue/job"
)

// tracerName is the instrumentation scope name for queue tracing.
const tracerName = "github.com/xraph/jobqueue"

// Tracing returns middleware that wraps each attempt in an OpenTelemetry
// span using the global TracerProvider. Without a configured provider the
// noop tracer makes this a pass-through.
//
// Span attributes: jobqueue.job.id, jobqueue.job.type, jobqueue.job.priority,
// jobqueue.retry_count, jobqueue.worker.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) (any, error) {
		ctx, span := tracer.Start(ctx, "jobqueue.job.execute",
			trace.WithAttributes(
				attribute.String("jobqueue.job.id", j.ID.String()),
				attribute.String("jobqueue.job.type", j.Type),
				attribute.Int("jobqueue.job.priority", j.Priority),
				attribute.Int("jobqueue.retry_count", j.RetryCount),
				attribute.String("jobqueue.worker", j.WorkerName),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		result, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return result, err
	}
}
