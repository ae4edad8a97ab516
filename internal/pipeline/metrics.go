package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	invocations metric.Int64Counter
	elapsed     metric.Float64Histogram
	posts       metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	invocations, err := meter.Int64Counter("pipeline_invocations",
		metric.WithDescription("Pipeline invocations by outcome"))
	if err != nil {
		return nil, err
	}
	elapsed, err := meter.Float64Histogram("pipeline_elapsed",
		metric.WithDescription("Measured pipeline time under the configured timing mode"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	posts, err := meter.Int64Counter("pipeline_posts_rendered",
		metric.WithDescription("Articles appended to the post container"))
	if err != nil {
		return nil, err
	}
	return &metrics{invocations: invocations, elapsed: elapsed, posts: posts}, nil
}

func (m *metrics) record(ctx context.Context, r Report) {
	if m == nil {
		return
	}
	name := attribute.String("pipeline", r.Pipeline)
	m.invocations.Add(ctx, 1, metric.WithAttributes(name, attribute.String("outcome", r.Outcome())))
	m.elapsed.Record(ctx, r.Elapsed.Seconds(), metric.WithAttributes(name))
	if r.Posts > 0 {
		m.posts.Add(ctx, int64(r.Posts), metric.WithAttributes(name))
	}
}
