// Package logging provides the logging interface used across postfeed.
// Components depend on Logger; the zerolog adapter is the default backend and
// the std adapter bridges plain *log.Logger instances.
package logging
