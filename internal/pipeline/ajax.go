package pipeline

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/source"
	"github.com/mohammad-safakhou/postfeed/models"
)

// ErrUnhandled marks a callback-style invocation whose request failed. The
// callback style has no failure path, so the cause is only known to the
// source client's unhandled sink.
var ErrUnhandled = errors.New("posts request failed with no failure handler")

// AjaxPipeline issues the request with a success callback only.
type AjaxPipeline struct {
	runner
	client *source.Client
}

// Run starts one invocation.
func (p *AjaxPipeline) Run(ctx context.Context) *Invocation {
	ctx, inv, span := p.begin(ctx)
	start := time.Now()

	var (
		called    bool
		rendered  int
		renderErr error
	)
	done := p.client.GetPosts(ctx, func(posts []models.Post) {
		called = true
		p.logger.Debug("posts received", logging.String("invocation", inv.ID), logging.Int("count", len(posts)))
		rendered, renderErr = p.renderPosts(posts)
	})
	elapsed, text := p.issued(inv, start)

	go p.settle(ctx, inv, span, start, done, func() Report {
		rep := Report{ID: inv.ID, Pipeline: p.name, Elapsed: elapsed, TimerText: text, Posts: rendered}
		switch {
		case !called:
			rep.Err = ErrUnhandled
		case renderErr != nil:
			rep.Err = renderErr
		}
		return rep
	})
	return inv
}

func (p *AjaxPipeline) settle(ctx context.Context, inv *Invocation, span trace.Span, start time.Time, done <-chan struct{}, report func() Report) {
	<-done
	p.finish(context.WithoutCancel(ctx), inv, span, start, report())
}
