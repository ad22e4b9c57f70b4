// Package errors defines the sentinel errors of the index and query path
// and how they surface: as HTTP status codes and as short reason labels for
// metrics and logs. Callers wrap sentinels with fmt.Errorf("...: %w").
package errors

import (
	"errors"
	"net/http"
)

var (
	ErrDuplicateDocument = errors.New("document already indexed")
	ErrMalformedQuery    = errors.New("malformed query")
	ErrIndexFrozen       = errors.New("index is frozen")
	ErrIndexClosed       = errors.New("index is closed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceUnavailable = errors.New("document source unavailable")
	ErrTimeout           = errors.New("operation timed out")
)

var kinds = []struct {
	err    error
	reason string
	status int
}{
	{ErrMalformedQuery, "malformed", http.StatusBadRequest},
	{ErrInvalidInput, "invalid", http.StatusBadRequest},
	{ErrDuplicateDocument, "duplicate", http.StatusConflict},
	{ErrIndexFrozen, "frozen", http.StatusConflict},
	{ErrIndexClosed, "closed", http.StatusServiceUnavailable},
	{ErrSourceUnavailable, "source", http.StatusServiceUnavailable},
	{ErrTimeout, "timeout", http.StatusServiceUnavailable},
}

// HTTPStatusCode maps err to the status the search API answers with.
// Unknown errors are 500.
func HTTPStatusCode(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Reason returns a short label for the sentinel err wraps, "internal" for
// anything else.
func Reason(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.reason
		}
	}
	return "internal"
}
