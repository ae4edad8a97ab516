package source

import (
	"context"

	"github.com/mohammad-safakhou/postfeed/models"
)

// Future is the eventual outcome of an asynchronous operation. It settles
// exactly once, with a value or with an error.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn in a goroutine and returns a Future settled with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		f.settle(fn())
	}()
	return f
}

func (f *Future[T]) settle(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Done is closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the future settles or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Catch returns a future that settles after f. When f fails, fn runs once
// with the error and the returned future settles without error and with the
// zero value. When f succeeds its value passes through and fn is not called.
func (f *Future[T]) Catch(fn func(error)) *Future[T] {
	next := newFuture[T]()
	go func() {
		<-f.done
		if f.err != nil {
			fn(f.err)
			var zero T
			next.settle(zero, nil)
			return
		}
		next.settle(f.val, nil)
	}()
	return next
}

// Then chains fn after f. When f fails, fn is skipped and the error passes
// through. An error returned by fn rejects the chained future.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			next.settle(zero, f.err)
			return
		}
		next.settle(fn(f.val))
	}()
	return next
}

// FetchPosts issues the request in the background and returns a future for
// the decoded posts.
func (c *Client) FetchPosts(ctx context.Context) *Future[[]models.Post] {
	return Go(func() ([]models.Post, error) {
		return c.Posts(ctx)
	})
}
