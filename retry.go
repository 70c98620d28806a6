package pdf

import (
	"fmt"

	"github.com/arclight-labs/pdfprogressive/internal/logger"
	"github.com/arclight-labs/pdfprogressive/internal/tracer"
)

// MaxRetries bounds how many times withRetry will satisfy a *MissingData
// fault and replay an operation before giving up.
const MaxRetries = 10

// withRetry runs op, and whenever it fails with *MissingData, asks stream
// to load the named range and replays op - up to maxRetries times. Any
// other error, or the operation's eventual success, is returned as-is.
//
// This is the Go shape of the exception-driven retry loop used throughout
// the progressive loader: parse_xref, fetch(num, gen), and page rendering
// are all called through withRetry rather than assuming every byte they
// touch is already resident.
func withRetry[T any](stream Stream, op func() (T, error)) (T, error) {
	return withRetryLimit(stream, MaxRetries, op)
}

func withRetryLimit[T any](stream Stream, maxRetries int, op func() (T, error)) (T, error) {
	var zero T
	retries := 0
	for {
		result, err := op()
		if err == nil {
			return result, nil
		}
		md, ok := err.(*MissingData)
		if !ok {
			return zero, err
		}
		retries++
		if retries > maxRetries {
			logger.Error("exceeded max retries loading data", "position", md.Position, "length", md.Length, "maxRetries", maxRetries)
			return zero, &Generic{Msg: fmt.Sprintf("exceeded maximum retries (%d) while loading data at position %d (length %d)", maxRetries, md.Position, md.Length)}
		}
		tracer.Logf("missing data at %d (len %d): ensuring range, retry %d/%d", md.Position, md.Length, retries, maxRetries)
		logger.Debug("retrying after missing data", "position", md.Position, "length", md.Length, "attempt", retries, true)
		if ferr := stream.EnsureRange(md.Position, md.Position+md.Length); ferr != nil {
			return zero, ferr
		}
	}
}
