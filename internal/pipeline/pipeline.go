package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/render"
	"github.com/mohammad-safakhou/postfeed/internal/source"
	"github.com/mohammad-safakhou/postfeed/models"
)

const instrumentationName = "github.com/mohammad-safakhou/postfeed/internal/pipeline"

// Pipeline names.
const (
	NameGet   = "get"
	NameFetch = "fetch"
)

// Names lists the registered pipelines in trigger order.
var Names = []string{NameGet, NameFetch}

// Pipeline is a trigger handler bound to a document.
type Pipeline interface {
	Name() string
	// Run starts one invocation and returns without waiting for the
	// response.
	Run(ctx context.Context) *Invocation
}

// Options configures both pipelines.
type Options struct {
	Timing   TimingMode
	Sanitize bool
	Logger   logging.Logger
	Meter    metric.Meter
	Tracer   trace.Tracer
}

// New returns the pipeline registered under name, bound to doc.
func New(name string, doc *dom.Document, client *source.Client, opts Options) (Pipeline, error) {
	base, err := newRunner(name, doc, opts)
	if err != nil {
		return nil, err
	}
	switch name {
	case NameGet:
		return &AjaxPipeline{runner: base, client: client}, nil
	case NameFetch:
		return &FetchPipeline{runner: base, client: client}, nil
	default:
		return nil, apperrors.UnknownPipelineError{Name: name}
	}
}

// NewSet builds every registered pipeline against doc, keyed by name.
func NewSet(doc *dom.Document, client *source.Client, opts Options) (map[string]Pipeline, error) {
	set := make(map[string]Pipeline, len(Names))
	for _, name := range Names {
		p, err := New(name, doc, client, opts)
		if err != nil {
			return nil, err
		}
		set[name] = p
	}
	return set, nil
}

// runner holds what both pipelines share: the target document, the
// renderer and the timer handling.
type runner struct {
	name    string
	doc     *dom.Document
	builder render.Builder
	timing  TimingMode
	logger  logging.Logger
	tracer  trace.Tracer
	metrics *metrics
}

func newRunner(name string, doc *dom.Document, opts Options) (runner, error) {
	timing := opts.Timing
	if timing == "" {
		timing = TimingIssue
	}
	if _, err := ParseTimingMode(string(timing)); err != nil {
		return runner{}, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	m, err := newMetrics(meter)
	if err != nil {
		return runner{}, apperrors.WrapError(err, "pipeline metrics")
	}
	return runner{
		name:    name,
		doc:     doc,
		builder: render.Builder{Sanitize: opts.Sanitize},
		timing:  timing,
		logger:  logger,
		tracer:  tracer,
		metrics: m,
	}, nil
}

func (r *runner) Name() string { return r.name }

// begin allocates the invocation and its span.
func (r *runner) begin(ctx context.Context) (context.Context, *Invocation, trace.Span) {
	inv := newInvocation(uuid.NewString(), r.name)
	ctx, span := r.tracer.Start(ctx, "pipeline."+r.name,
		trace.WithAttributes(
			attribute.String("pipeline", r.name),
			attribute.String("invocation.id", inv.ID),
			attribute.String("timing.mode", string(r.timing)),
		))
	r.logger.Debug("invocation started", logging.String("pipeline", r.name), logging.String("invocation", inv.ID))
	return ctx, inv, span
}

// renderPosts builds posts into a fragment owned by this call and appends it
// to the container in one step.
func (r *runner) renderPosts(posts []models.Post) (int, error) {
	frag := dom.NewFragment()
	if _, err := r.builder.Build(frag, posts); err != nil {
		return 0, err
	}
	return r.doc.AppendFragment(dom.ContainerID, frag)
}

// showTimer writes the timer element and returns the text written.
func (r *runner) showTimer(inv *Invocation, elapsed time.Duration) string {
	text, err := render.DisplayTimer(r.doc, elapsed)
	if err != nil {
		r.logger.Warn("timer not written", logging.Err(err), logging.String("invocation", inv.ID))
		return render.FormatElapsed(elapsed)
	}
	return text
}

// issued is called right after the request has been handed off. In issue
// mode it fixes the elapsed time and writes the timer.
func (r *runner) issued(inv *Invocation, start time.Time) (time.Duration, string) {
	if r.timing != TimingIssue {
		return 0, ""
	}
	elapsed := time.Since(start)
	return elapsed, r.showTimer(inv, elapsed)
}

// finish settles the invocation. In completion mode it measures and writes
// the timer first.
func (r *runner) finish(ctx context.Context, inv *Invocation, span trace.Span, start time.Time, rep Report) {
	if r.timing == TimingCompletion {
		rep.Elapsed = time.Since(start)
		rep.TimerText = r.showTimer(inv, rep.Elapsed)
	}
	r.metrics.record(ctx, rep)

	span.SetAttributes(attribute.Int("posts", rep.Posts), attribute.Float64("elapsed_ms", float64(rep.Elapsed)/float64(time.Millisecond)))
	if rep.Err != nil {
		span.RecordError(rep.Err)
		span.SetStatus(codes.Error, rep.Err.Error())
	}
	span.End()

	r.logger.Debug("invocation settled",
		logging.String("pipeline", r.name),
		logging.String("invocation", inv.ID),
		logging.Int("posts", rep.Posts),
		logging.String("timer", rep.TimerText),
		logging.String("outcome", rep.Outcome()),
	)
	inv.settle(rep)
}
