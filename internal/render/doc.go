// Package render turns posts into page markup and formats elapsed times for
// the timer element. It holds no state of its own; every call works on the
// fragment or document it is given.
package render
