// Package logger gives the engine a single swappable logging hook instead
// of a hard dependency on any particular logging library, matching the
// LogFunc pattern used throughout the sassoftware pdf-xtract tooling.
package logger

import "github.com/arclight-labs/pdfprogressive/internal/tracer"

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	ErrorLevel LogLevel = "error"
)

// LogFunc receives a level, message, and an even-length list of key/value
// pairs. The zero value (nil) is a no-op logger.
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

var logFunc LogFunc

// SetLogger installs f as the package-wide log sink. Passing nil restores
// the no-op default.
func SetLogger(f LogFunc) {
	logFunc = f
}

// Debug logs at debug level. If the final keyval is a bool, it's treated
// as a "trace" flag: when true, the message is also appended to the
// tracer's accumulated trace log for the current open/fetch/render call.
func Debug(msg string, keyvals ...interface{}) {
	if n := len(keyvals); n > 0 {
		if trace, ok := keyvals[n-1].(bool); ok {
			if trace {
				tracer.Log(msg)
			}
			keyvals = keyvals[:n-1]
		}
	}
	if logFunc != nil {
		logFunc(DebugLevel, msg, keyvals...)
	}
}

// Error logs at error level.
func Error(msg string, keyvals ...interface{}) {
	if logFunc != nil {
		logFunc(ErrorLevel, msg, keyvals...)
	}
}
