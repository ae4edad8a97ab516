package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/models"
)

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func TestGetPosts_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, twoPosts))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	var got []models.Post
	done := c.GetPosts(context.Background(), func(posts []models.Post) { got = posts })
	waitDone(t, done)
	if len(got) != 2 {
		t.Fatalf("callback should receive 2 posts, got %d", len(got))
	}
}

func TestGetPosts_FailureSkipsCallback(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusNotFound, ``))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	var called atomic.Int32
	var unhandled error
	c.SetUnhandled(func(err error) { unhandled = err })

	waitDone(t, c.GetPosts(context.Background(), func([]models.Post) { called.Add(1) }))
	if called.Load() != 0 {
		t.Fatal("success callback must not run on failure")
	}
	var he *apperrors.HTTPError
	if !errors.As(unhandled, &he) {
		t.Fatalf("unhandled sink should receive HTTPError, got %v", unhandled)
	}
}

func TestFetchPosts_Await(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, twoPosts))
	defer srv.Close()

	posts, err := newTestClient(t, srv.URL, Options{}).FetchPosts(context.Background()).Await(context.Background())
	if err != nil || len(posts) != 2 {
		t.Fatalf("posts=%d err=%v", len(posts), err)
	}
}

func TestFetchPosts_ThenCatch(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantThen   int32
		wantCatch  int32
		wantErrMsg string
	}{
		{"success", jsonHandler(http.StatusOK, twoPosts), 1, 0, ""},
		{"not found", jsonHandler(http.StatusNotFound, ``), 0, 1, "404 - Not Found"},
		{"malformed", jsonHandler(http.StatusOK, `{`), 0, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			var thenCalls, catchCalls atomic.Int32
			var caught error
			c := newTestClient(t, srv.URL, Options{})
			chained := Then(c.FetchPosts(context.Background()), func(posts []models.Post) (int, error) {
				thenCalls.Add(1)
				return len(posts), nil
			}).Catch(func(err error) {
				catchCalls.Add(1)
				caught = err
			})

			n, err := chained.Await(context.Background())
			if err != nil {
				t.Fatalf("caught chain should settle without error, got %v", err)
			}
			if thenCalls.Load() != tt.wantThen || catchCalls.Load() != tt.wantCatch {
				t.Fatalf("then=%d catch=%d", thenCalls.Load(), catchCalls.Load())
			}
			if tt.wantThen == 1 && n != 2 {
				t.Fatalf("then result should pass through, got %d", n)
			}
			if tt.wantErrMsg != "" && (caught == nil || caught.Error() != tt.wantErrMsg) {
				t.Fatalf("caught %v, want %q", caught, tt.wantErrMsg)
			}
		})
	}
}

func TestThen_ErrorRejects(t *testing.T) {
	boom := errors.New("render failed")
	f := Then(Go(func() (int, error) { return 1, nil }), func(int) (string, error) { return "", boom })
	if _, err := f.Await(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestFuture_AwaitContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := Go(func() (int, error) { <-block; return 0, nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	select {
	case <-f.Done():
		t.Fatal("future should still be pending")
	default:
	}
}
