// Package tracer accumulates a human-readable trace of one open/fetch/render
// pipeline invocation - principally the MissingData fault / ensure_range
// satisfy sequence - so a caller can see why a retry loop did what it did.
package tracer

import "fmt"

var traceMessages []string

// Log appends msg to the current trace.
func Log(msg string) {
	traceMessages = append(traceMessages, msg)
}

// Logf appends a formatted message.
func Logf(format string, args ...interface{}) {
	Log(fmt.Sprintf(format, args...))
}

// Flush returns the accumulated trace lines and resets the buffer.
func Flush() []string {
	msgs := traceMessages
	traceMessages = nil
	return msgs
}
