package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCodeAndReason(t *testing.T) {
	tests := []struct {
		err    error
		status int
		reason string
	}{
		{fmt.Errorf("parsing: %w", ErrMalformedQuery), http.StatusBadRequest, "malformed"},
		{fmt.Errorf("%w: empty name", ErrInvalidInput), http.StatusBadRequest, "invalid"},
		{fmt.Errorf("indexing %q: %w", "a.txt", ErrDuplicateDocument), http.StatusConflict, "duplicate"},
		{ErrIndexFrozen, http.StatusConflict, "frozen"},
		{fmt.Errorf("querying: %w", ErrIndexClosed), http.StatusServiceUnavailable, "closed"},
		{ErrSourceUnavailable, http.StatusServiceUnavailable, "source"},
		{ErrTimeout, http.StatusServiceUnavailable, "timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatusCode(tt.err))
			assert.Equal(t, tt.reason, Reason(tt.err))
		})
	}
}
