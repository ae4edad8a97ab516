package render

import (
	"fmt"
	"time"

	"github.com/mohammad-safakhou/postfeed/internal/dom"
)

// FormatElapsed formats d as milliseconds with four decimals, e.g. "12.3457ms".
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.4fms", float64(d)/float64(time.Millisecond))
}

// DisplayTimer replaces the content of the timer element with the formatted
// duration and returns the text written.
func DisplayTimer(doc *dom.Document, d time.Duration) (string, error) {
	text := FormatElapsed(d)
	if err := doc.SetText(dom.TimerID, text); err != nil {
		return "", err
	}
	return text, nil
}
