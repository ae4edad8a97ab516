// Package pipeline wires a trigger to a posts request, the post renderer and
// the timer. Two pipelines exist: "get", built on the callback request style,
// and "fetch", built on the future style with a single catch handler.
//
// Every Run is an independent invocation with its own id and its own
// fragment. The target container is never cleared by a run, so repeated
// invocations accumulate posts.
package pipeline
