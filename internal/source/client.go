package source

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/internal/helpers"
	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/models"
)

// DefaultPostsURL is the embed-context posts endpoint of the demo site.
const DefaultPostsURL = "http://wp-api-demo.dev/wp-json/wp/v2/posts?context=embed"

const defaultMaxBody = 8 << 20

// Options configures a Client.
type Options struct {
	PostsURL       string
	Timeout        time.Duration
	UserAgent      string
	ValidateSchema bool
	MaxBodyBytes   int64
	// HTTPClient overrides the instrumented default. Its Timeout is left
	// untouched.
	HTTPClient *http.Client
}

// Client issues GET requests against the posts endpoint.
type Client struct {
	http      *http.Client
	endpoint  string
	userAgent string
	validate  bool
	maxBody   int64
	logger    logging.Logger
	unhandled func(error)
}

// NewClient builds a client for the configured endpoint. Failures from the
// callback style go to logger unless SetUnhandled overrides the sink.
func NewClient(opts Options, logger logging.Logger) (*Client, error) {
	raw := opts.PostsURL
	if raw == "" {
		raw = DefaultPostsURL
	}
	endpoint, err := helpers.PostsEndpoint(raw)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid posts url %q: %v", raw, err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	maxBody := opts.MaxBodyBytes
	if maxBody == 0 {
		maxBody = defaultMaxBody
	}
	c := &Client{
		http:      hc,
		endpoint:  endpoint,
		userAgent: opts.UserAgent,
		validate:  opts.ValidateSchema,
		maxBody:   maxBody,
		logger:    logger,
	}
	c.unhandled = c.logUnhandled
	return c, nil
}

// Endpoint returns the normalised posts URL.
func (c *Client) Endpoint() string { return c.endpoint }

// SetUnhandled replaces the sink for failures of the callback style.
func (c *Client) SetUnhandled(fn func(error)) {
	if fn == nil {
		fn = c.logUnhandled
	}
	c.unhandled = fn
}

func (c *Client) logUnhandled(err error) {
	c.logger.Warn("unhandled posts request failure", logging.Err(err), logging.String("url", c.endpoint))
}

// Posts performs one synchronous request and decodes the reply.
func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, apperrors.WrapError(err, "build posts request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("posts request issued", logging.String("url", c.endpoint))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, apperrors.NewHTTPError(resp.StatusCode, resp.Status)
	}

	body, err := helpers.ReadLimitedAndClose(resp.Body, c.maxBody)
	if err != nil {
		return nil, apperrors.WrapError(err, "read posts body")
	}
	return c.decode(body)
}

func (c *Client) decode(body []byte) ([]models.Post, error) {
	if c.validate {
		if err := ValidatePostsDocument(body); err != nil {
			return nil, &apperrors.ParseError{Cause: err}
		}
	}
	var posts []models.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, &apperrors.ParseError{Cause: err}
	}
	if posts == nil {
		return nil, &apperrors.ParseError{Cause: models.ErrNoPosts}
	}
	return posts, nil
}
