package pipeline

import (
	"context"
	"time"
)

// Report is the settled outcome of one invocation.
type Report struct {
	ID       string
	Pipeline string
	// Posts is the number of articles this invocation appended.
	Posts int
	// Elapsed is the measured duration under the pipeline's timing mode.
	Elapsed   time.Duration
	TimerText string
	// Err is the failure, if any. For the fetch pipeline it has already
	// been handled by the catch handler when the report is delivered.
	Err error
}

// Outcome classifies the report for metrics and logs.
func (r Report) Outcome() string {
	if r.Err != nil {
		return "failure"
	}
	return "success"
}

// Invocation is a running or settled pipeline run.
type Invocation struct {
	ID       string
	Pipeline string

	done   chan struct{}
	report Report
}

func newInvocation(id, pipeline string) *Invocation {
	return &Invocation{
		ID:       id,
		Pipeline: pipeline,
		done:     make(chan struct{}),
		report:   Report{ID: id, Pipeline: pipeline},
	}
}

// Done is closed once the invocation has settled.
func (i *Invocation) Done() <-chan struct{} { return i.done }

// Wait blocks until the invocation settles or ctx ends. The returned error
// is only ever the context error; the invocation's own failure is in
// Report.Err.
func (i *Invocation) Wait(ctx context.Context) (Report, error) {
	select {
	case <-i.done:
		return i.report, nil
	case <-ctx.Done():
		return Report{ID: i.ID, Pipeline: i.Pipeline}, ctx.Err()
	}
}

func (i *Invocation) settle(r Report) {
	i.report = r
	close(i.done)
}
