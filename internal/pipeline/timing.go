package pipeline

import (
	"strings"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
)

// TimingMode selects what the timer measures.
type TimingMode string

const (
	// TimingIssue measures only the synchronous issuance of the request and
	// writes the timer immediately afterwards, before any response arrives.
	TimingIssue TimingMode = "issue"
	// TimingCompletion measures from issuance until the invocation settles
	// (posts rendered or failure handled) and writes the timer then.
	TimingCompletion TimingMode = "completion"
)

// ParseTimingMode accepts "issue" or "completion". Empty means issue.
func ParseTimingMode(s string) (TimingMode, error) {
	switch TimingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TimingIssue:
		return TimingIssue, nil
	case TimingCompletion:
		return TimingCompletion, nil
	default:
		return "", apperrors.NewConfigError("unknown timing mode %q (want issue or completion)", s)
	}
}
