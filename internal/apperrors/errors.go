package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Process exit codes returned by the CLI.
const (
	ExitSuccess       = 0   // Successful execution.
	ExitErrorGeneric  = 1   // Any failure not covered below.
	ExitErrorFetch    = 2   // The posts request failed or returned a non-2xx status.
	ExitErrorParse    = 3   // The response body was not a valid post list.
	ExitErrorConfig   = 4   // Invalid flags or configuration.
	ExitErrorCanceled = 130 // Interrupted (SIGINT convention).
)

// HTTPError reports a response that settled with a non-success status.
// Its message is "<status> - <status text>", e.g. "404 - Not Found".
type HTTPError struct {
	// Status is the numeric HTTP status code.
	Status int
	// StatusText is the reason phrase of the response.
	StatusText string
}

// NewHTTPError builds an HTTPError from a status code and the status line
// returned by net/http (e.g. "404 Not Found"). The reason phrase falls back
// to http.StatusText when the status line carries none.
func NewHTTPError(code int, statusLine string) *HTTPError {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(statusLine), fmt.Sprint(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	return &HTTPError{Status: code, StatusText: text}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d - %s", e.Status, e.StatusText)
}

// ParseError wraps a failure to decode or validate the posts payload.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string { return e.Cause.Error() }

// Unwrap returns the decoding error.
func (e *ParseError) Unwrap() error { return e.Cause }

// ConfigError represents an invalid flag or configuration value.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// UnknownPipelineError is returned when a trigger names a pipeline that is
// not registered.
type UnknownPipelineError struct {
	Name string
}

func (e UnknownPipelineError) Error() string {
	return fmt.Sprintf("unknown pipeline %q", e.Name)
}

// WrapError wraps err with a formatted context message. It returns nil when
// err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var httpErr *HTTPError
	var parseErr *ParseError
	var cfgErr ConfigError
	var unknown UnknownPipelineError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &unknown):
		return ExitErrorConfig
	case errors.As(err, &parseErr):
		return ExitErrorParse
	case errors.As(err, &httpErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorFetch
	}
	return ExitErrorGeneric
}
