package chromedp

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"

	"github.com/mohammad-safakhou/postfeed/tools/page_driver/models"
)

// Driver runs a headless Chrome per click.
type Driver struct {
	Timeout  time.Duration
	MaxChars int // Maximum characters of readable text to return
}

// Click loads pageURL, clicks #trigger and waits until the post container
// holds at least one article.
func (d Driver) Click(ctx context.Context, pageURL, trigger string) (models.Result, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Host == "" {
		return models.Result{}, errors.New("invalid url")
	}
	if trigger != "get" && trigger != "fetch" {
		return models.Result{}, fmt.Errorf("unknown trigger %q", trigger)
	}

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	t0 := time.Now()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("postfeed-driver/1.0"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var timer, posts, html string
	var articles int
	err = chromedp.Run(bctx,
		chromedp.Navigate(u.String()),
		chromedp.WaitReady("#"+trigger, chromedp.ByQuery),
		chromedp.Click("#"+trigger, chromedp.ByQuery),
		chromedp.WaitVisible("#posts article", chromedp.ByQuery),
		chromedp.Text("#timer", &timer, chromedp.ByQuery),
		chromedp.InnerHTML("#posts", &posts, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelectorAll('#posts article').length`, &articles),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return models.Result{URL: pageURL, Trigger: trigger, RenderMS: int(time.Since(t0) / time.Millisecond)}, fmt.Errorf("drive page: %w", err)
	}

	res := models.Result{
		URL:       pageURL,
		Trigger:   trigger,
		Timer:     strings.TrimSpace(timer),
		Articles:  articles,
		PostsHTML: posts,
	}

	// Extract readable text from the final page
	if article, err := readability.FromReader(strings.NewReader(html), u); err == nil {
		text := strings.TrimSpace(article.TextContent)
		if len(text) > d.MaxChars {
			text = text[:d.MaxChars]
		}
		res.Title = strings.TrimSpace(article.Title)
		res.Text = text
	}

	sum := sha1.Sum([]byte(html))
	res.HTMLHash = hex.EncodeToString(sum[:])
	res.RenderMS = int(time.Since(t0) / time.Millisecond)
	return res, nil
}
