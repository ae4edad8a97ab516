// Package source retrieves post lists from a WordPress-style REST endpoint.
//
// It exposes the same request in two styles. GetPosts takes a success
// callback and has no failure path: a failed request is reported to the
// client's unhandled sink and the callback never runs. FetchPosts returns a
// Future that settles with the decoded posts or with a typed error
// (*apperrors.HTTPError for non-2xx replies, *apperrors.ParseError for bad
// payloads, or the transport error).
package source
