package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/source"
	"github.com/mohammad-safakhou/postfeed/models"
)

// FetchPipeline issues the request as a future, renders in the success
// continuation and handles every failure in one catch handler.
type FetchPipeline struct {
	runner
	client *source.Client
}

// Run starts one invocation.
func (p *FetchPipeline) Run(ctx context.Context) *Invocation {
	ctx, inv, span := p.begin(ctx)
	start := time.Now()

	var failure error
	settled := source.Then(p.client.FetchPosts(ctx), func(posts []models.Post) (int, error) {
		p.logger.Debug("posts received", logging.String("invocation", inv.ID), logging.Int("count", len(posts)))
		return p.renderPosts(posts)
	}).Catch(func(err error) {
		failure = err
		p.logger.Error(fmt.Sprintf("There was a problem fetching posts: %s", err), err,
			logging.String("invocation", inv.ID))
	})
	elapsed, text := p.issued(inv, start)

	go func() {
		// Catch always settles without error.
		<-settled.Done()
		n, _ := settled.Await(context.Background())
		p.finish(context.WithoutCancel(ctx), inv, span, start, Report{
			ID:        inv.ID,
			Pipeline:  p.name,
			Posts:     n,
			Elapsed:   elapsed,
			TimerText: text,
			Err:       failure,
		})
	}()
	return inv
}
