package page_driver

import (
	"context"
	"time"

	"github.com/mohammad-safakhou/postfeed/tools/page_driver/chromedp"
	"github.com/mohammad-safakhou/postfeed/tools/page_driver/models"
)

const (
	DefaultTimeout  = 15 * time.Second
	MaxCharsDefault = 20000
)

// PageDriver clicks a trigger on a served page and reports what the page
// shows afterwards.
type PageDriver interface {
	Click(ctx context.Context, pageURL, trigger string) (models.Result, error)
}

type DriverType string

const (
	ChromedpDriverType DriverType = "chromedp"
)

type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func NewPageDriver(driverType DriverType, timeout time.Duration, maxChars int) (PageDriver, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	switch driverType {
	case ChromedpDriverType:
		return &chromedp.Driver{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, &Error{"unsupported driver type " + string(driverType)}
	}
}
