package sheets

import (
	"fmt"
	"strings"
)

// SourceFormatError means the payload wrapper or table structure was not
// recognized. It aborts the query that triggered the fetch.
type SourceFormatError struct {
	Sheet  string
	Reason string
	Err    error
}

func (e *SourceFormatError) Error() string {
	msg := fmt.Sprintf("sheet %q: unrecognized response: %s", e.Sheet, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceFormatError) Unwrap() error { return e.Err }

// SourceAPIError means the data source answered with status "error".
type SourceAPIError struct {
	Sheet   string
	Details []string
}

func (e *SourceAPIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("sheet %q: data source reported an error", e.Sheet)
	}
	return fmt.Sprintf("sheet %q: %s", e.Sheet, strings.Join(e.Details, "; "))
}

// HTTPError is a non-2xx answer from the query endpoint.
type HTTPError struct {
	Sheet      string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sheet %q: http status %d", e.Sheet, e.StatusCode)
}
