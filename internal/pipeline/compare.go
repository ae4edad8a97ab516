package pipeline

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/source"
)

// Result summarises repeated invocations of one pipeline.
type Result struct {
	Pipeline  string
	Rounds    int
	Durations []time.Duration
	Median    time.Duration
	Min       time.Duration
	Max       time.Duration
	// Posts is the number of articles appended across all rounds.
	Posts int
	// Failures counts rounds whose report carried an error.
	Failures int
	// Err is the last failure seen, if any.
	Err error
}

// Compare runs each named pipeline rounds times. Pipelines run concurrently
// with each other, rounds run sequentially within a pipeline. Every pipeline
// renders into its own scratch page and measures in completion mode, so the
// numbers include the response and render. Results are sorted with fully
// successful pipelines first, then by median duration.
func Compare(ctx context.Context, client *source.Client, names []string, rounds int, opts Options) ([]Result, error) {
	if rounds < 1 {
		return nil, apperrors.NewConfigError("rounds must be at least 1, got %d", rounds)
	}
	opts.Timing = TimingCompletion

	pipelines := make([]Pipeline, len(names))
	for i, name := range names {
		p, err := New(name, dom.NewPage("compare "+name), client, opts)
		if err != nil {
			return nil, err
		}
		pipelines[i] = p
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make([]Result, len(pipelines))
	for i, p := range pipelines {
		idx, pl := i, p
		g.Go(func() error {
			res := Result{Pipeline: pl.Name(), Rounds: rounds}
			for r := 0; r < rounds; r++ {
				rep, err := pl.Run(ctx).Wait(ctx)
				if err != nil {
					return err
				}
				res.Durations = append(res.Durations, rep.Elapsed)
				res.Posts += rep.Posts
				if rep.Err != nil {
					res.Failures++
					res.Err = rep.Err
				}
			}
			summarize(&res)
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Failures == 0) != (results[j].Failures == 0) {
			return results[i].Failures == 0
		}
		return results[i].Median < results[j].Median
	})
	return results, nil
}

func summarize(res *Result) {
	if len(res.Durations) == 0 {
		return
	}
	sorted := append([]time.Duration(nil), res.Durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	res.Min = sorted[0]
	res.Max = sorted[len(sorted)-1]
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		res.Median = sorted[mid]
	} else {
		res.Median = (sorted[mid-1] + sorted[mid]) / 2
	}
}
