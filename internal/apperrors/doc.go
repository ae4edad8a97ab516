// Package apperrors defines the structured error types shared by the posts
// client, the pipelines and the CLI, together with the process exit codes.
//
// Every wrapping type implements Unwrap so callers can rely on errors.Is and
// errors.As across the chain.
package apperrors
