package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/source"
)

const threePosts = `[
	{"id": 3, "type": "post", "title": {"rendered": "Three"}, "excerpt": {"rendered": "<p>c</p>"}},
	{"id": 1, "type": "post", "title": {"rendered": "One"}, "excerpt": {"rendered": "<p>a</p>"}},
	{"id": 2, "type": "page", "title": {"rendered": "Two"}, "excerpt": {"rendered": "<p>b</p>"}}
]`

var timerPattern = regexp.MustCompile(`^\d+\.\d{4}ms$`)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	doc    *dom.Document
	client *source.Client
	logs   *syncBuffer
	hits   *atomic.Int32
}

func newFixture(t *testing.T, status int, body string, delay time.Duration) *fixture {
	t.Helper()
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	logs := &syncBuffer{}
	logger := logging.NewStdLoggerAdapter(log.New(logs, "", 0))
	client, err := source.NewClient(source.Options{PostsURL: srv.URL + "/wp-json/wp/v2/posts"}, logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &fixture{doc: dom.NewPage("test"), client: client, logs: logs, hits: hits}
}

func (f *fixture) pipeline(t *testing.T, name string, timing TimingMode) Pipeline {
	t.Helper()
	logger := logging.NewStdLoggerAdapter(log.New(f.logs, "", 0))
	p, err := New(name, f.doc, f.client, Options{Timing: timing, Logger: logger})
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	return p
}

func wait(t *testing.T, inv *Invocation) Report {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rep, err := inv.Wait(ctx)
	if err != nil {
		t.Fatalf("invocation %s did not settle: %v", inv.ID, err)
	}
	return rep
}

func articleIDs(t *testing.T, doc *dom.Document) []string {
	t.Helper()
	inner, err := doc.InnerHTML(dom.ContainerID)
	if err != nil {
		t.Fatal(err)
	}
	return regexp.MustCompile(`post-\d+`).FindAllString(inner, -1)
}

func TestPipelines_RenderInOrder(t *testing.T) {
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, http.StatusOK, threePosts, 0)
			rep := wait(t, f.pipeline(t, name, TimingIssue).Run(context.Background()))

			if rep.Err != nil {
				t.Fatalf("unexpected failure: %v", rep.Err)
			}
			if rep.Posts != 3 {
				t.Fatalf("expected 3 posts, got %d", rep.Posts)
			}
			got := strings.Join(articleIDs(t, f.doc), ",")
			if got != "post-3,post-1,post-2" {
				t.Fatalf("articles out of order: %s", got)
			}
			inner, _ := f.doc.InnerHTML(dom.ContainerID)
			if !strings.Contains(inner, `<article class="page post-2"><h2>Two</h2><div class="excerpt"><p>b</p></div></article>`) {
				t.Fatalf("unexpected markup: %s", inner)
			}
			timer, _ := f.doc.Text(dom.TimerID)
			if !timerPattern.MatchString(timer) || timer != rep.TimerText {
				t.Fatalf("timer %q report %q", timer, rep.TimerText)
			}
		})
	}
}

func TestPipelines_Accumulate(t *testing.T) {
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, http.StatusOK, threePosts, 0)
			p := f.pipeline(t, name, TimingIssue)
			first := wait(t, p.Run(context.Background()))
			second := wait(t, p.Run(context.Background()))

			if first.ID == second.ID {
				t.Fatal("invocations must have distinct ids")
			}
			if first.Posts != 3 || second.Posts != 3 {
				t.Fatalf("each invocation appends its own posts: %d, %d", first.Posts, second.Posts)
			}
			if n, _ := f.doc.Count(dom.ContainerID, "article"); n != 6 {
				t.Fatalf("container should accumulate 6 articles, got %d", n)
			}
		})
	}
}

func TestPipelines_Concurrent(t *testing.T) {
	f := newFixture(t, http.StatusOK, threePosts, 10*time.Millisecond)
	get := f.pipeline(t, NameGet, TimingCompletion)
	fetch := f.pipeline(t, NameFetch, TimingCompletion)

	var invs []*Invocation
	for i := 0; i < 4; i++ {
		invs = append(invs, get.Run(context.Background()), fetch.Run(context.Background()))
	}
	seen := map[string]bool{}
	for _, inv := range invs {
		rep := wait(t, inv)
		if rep.Posts != 3 || rep.Err != nil {
			t.Fatalf("invocation %s: posts=%d err=%v", rep.ID, rep.Posts, rep.Err)
		}
		seen[rep.ID] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct invocations, got %d", len(seen))
	}
	if n, _ := f.doc.Count(dom.ContainerID, "article"); n != 24 {
		t.Fatalf("expected 24 articles, got %d", n)
	}
}

func TestFetchPipeline_CatchesOnce(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		check   func(error) bool
	}{
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"code":"rest_no_route"}`,
			message: "There was a problem fetching posts: 404 - Not Found",
			check: func(err error) bool {
				var he *apperrors.HTTPError
				return errors.As(err, &he) && he.Status == 404
			},
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `[{"id":`,
			message: "There was a problem fetching posts: ",
			check: func(err error) bool {
				var pe *apperrors.ParseError
				return errors.As(err, &pe)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.status, tt.body, 0)
			rep := wait(t, f.pipeline(t, NameFetch, TimingIssue).Run(context.Background()))

			if !tt.check(rep.Err) {
				t.Fatalf("unexpected report error %v", rep.Err)
			}
			if rep.Posts != 0 {
				t.Fatalf("failure must append nothing, got %d", rep.Posts)
			}
			if n, _ := f.doc.Count(dom.ContainerID, "article"); n != 0 {
				t.Fatalf("container should stay empty, got %d", n)
			}
			if c := strings.Count(f.logs.String(), "There was a problem fetching posts"); c != 1 {
				t.Fatalf("catch should log exactly once, got %d:\n%s", c, f.logs.String())
			}
			if !strings.Contains(f.logs.String(), tt.message) {
				t.Fatalf("log should contain %q:\n%s", tt.message, f.logs.String())
			}
		})
	}
}

func TestAjaxPipeline_FailureIsUnhandled(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, ``, 0)
	var sink atomic.Int32
	var sunk error
	f.client.SetUnhandled(func(err error) {
		sink.Add(1)
		sunk = err
	})

	rep := wait(t, f.pipeline(t, NameGet, TimingIssue).Run(context.Background()))
	if !errors.Is(rep.Err, ErrUnhandled) {
		t.Fatalf("expected ErrUnhandled, got %v", rep.Err)
	}
	if sink.Load() != 1 || sunk == nil || sunk.Error() != "500 - Internal Server Error" {
		t.Fatalf("unhandled sink calls=%d err=%v", sink.Load(), sunk)
	}
	if n, _ := f.doc.Count(dom.ContainerID, "article"); n != 0 {
		t.Fatalf("container should stay empty, got %d", n)
	}
	if strings.Contains(f.logs.String(), "There was a problem fetching posts") {
		t.Fatal("callback pipeline has no catch handler")
	}
}

func TestTimingModes(t *testing.T) {
	const delay = 80 * time.Millisecond
	for _, name := range Names {
		t.Run(name+"/issue", func(t *testing.T) {
			f := newFixture(t, http.StatusOK, threePosts, delay)
			inv := f.pipeline(t, name, TimingIssue).Run(context.Background())

			// the timer is written before any response arrives
			timer, _ := f.doc.Text(dom.TimerID)
			if !timerPattern.MatchString(timer) {
				t.Fatalf("issue mode should write the timer at issuance, got %q", timer)
			}
			if n, _ := f.doc.Count(dom.ContainerID, "article"); n != 0 {
				t.Fatal("posts should not be rendered yet")
			}
			rep := wait(t, inv)
			if rep.Elapsed >= delay {
				t.Fatalf("issue mode should not include the response time, got %v", rep.Elapsed)
			}
			if rep.TimerText != timer {
				t.Fatalf("report timer %q, page timer %q", rep.TimerText, timer)
			}
		})
		t.Run(name+"/completion", func(t *testing.T) {
			f := newFixture(t, http.StatusOK, threePosts, delay)
			inv := f.pipeline(t, name, TimingCompletion).Run(context.Background())

			if timer, _ := f.doc.Text(dom.TimerID); timer != "" {
				t.Fatalf("completion mode should not write the timer early, got %q", timer)
			}
			rep := wait(t, inv)
			if rep.Elapsed < delay {
				t.Fatalf("completion mode should include the response time, got %v", rep.Elapsed)
			}
			timer, _ := f.doc.Text(dom.TimerID)
			if timer != rep.TimerText || !timerPattern.MatchString(timer) {
				t.Fatalf("timer %q report %q", timer, rep.TimerText)
			}
		})
	}
}

func TestCompletionTiming_FailureStillTimed(t *testing.T) {
	f := newFixture(t, http.StatusNotFound, ``, 0)
	rep := wait(t, f.pipeline(t, NameFetch, TimingCompletion).Run(context.Background()))
	if rep.Err == nil || rep.TimerText == "" {
		t.Fatalf("failure should still be timed: %+v", rep)
	}
}

func TestNew_UnknownPipeline(t *testing.T) {
	f := newFixture(t, http.StatusOK, threePosts, 0)
	_, err := New("xhr", f.doc, f.client, Options{})
	var unknown apperrors.UnknownPipelineError
	if !errors.As(err, &unknown) || unknown.Name != "xhr" {
		t.Fatalf("expected UnknownPipelineError, got %v", err)
	}
}

func TestNew_InvalidTiming(t *testing.T) {
	f := newFixture(t, http.StatusOK, threePosts, 0)
	if _, err := New(NameGet, f.doc, f.client, Options{Timing: "later"}); err == nil {
		t.Fatal("expected timing mode error")
	}
}

func TestNewSet(t *testing.T) {
	f := newFixture(t, http.StatusOK, threePosts, 0)
	set, err := NewSet(f.doc, f.client, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range Names {
		if set[name] == nil || set[name].Name() != name {
			t.Fatalf("missing pipeline %q", name)
		}
	}
}

func TestParseTimingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TimingMode
		wantErr bool
	}{
		{"", TimingIssue, false},
		{"issue", TimingIssue, false},
		{" Completion ", TimingCompletion, false},
		{"eventually", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTimingMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTimingMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestInvocation_WaitContext(t *testing.T) {
	inv := newInvocation("id", NameGet)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := inv.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
