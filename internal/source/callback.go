package source

import (
	"context"

	"github.com/mohammad-safakhou/postfeed/models"
)

// GetPosts issues the request in the background and calls onSuccess with the
// decoded posts when it succeeds. On failure onSuccess is never called and
// the error goes to the unhandled sink. The returned channel closes once
// the request and any callback have finished.
func (c *Client) GetPosts(ctx context.Context, onSuccess func([]models.Post)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		posts, err := c.Posts(ctx)
		if err != nil {
			c.unhandled(err)
			return
		}
		onSuccess(posts)
	}()
	return done
}
