package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/jobqueue/job"
)

// ObserveStats registers a jobqueue.jobs gauge reporting the number of
// jobs per state, with a "state" attribute. stats is called once per
// collection; pass the queue's GetQueueStats method.
//
// The returned registration can be used to stop observing.
func ObserveStats(meter metric.Meter, stats func() job.Stats) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		"jobqueue.jobs",
		metric.WithDescription("Jobs currently held in the registry, by state"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		for _, kv := range []struct {
			state job.State
			n     int
		}{
			{job.StatePending, s.Pending},
			{job.StateRunning, s.Running},
			{job.StateCompleted, s.Completed},
			{job.StateFailed, s.Failed},
			{job.StateCancelled, s.Cancelled},
		} {
			o.ObserveInt64(gauge, int64(kv.n),
				metric.WithAttributes(attribute.String("state", string(kv.state))))
		}
		return nil
	}, gauge)
}
