package sharepoint

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", &APIError{StatusCode: http.StatusNotFound}, IsNotFound, true},
		{"not found wrapped", fmt.Errorf("fetch: %w", &APIError{StatusCode: http.StatusNotFound}), IsNotFound, true},
		{"not found on 403", &APIError{StatusCode: http.StatusForbidden}, IsNotFound, false},
		{"conflict by status", &APIError{StatusCode: http.StatusConflict}, IsConflict, true},
		{"conflict by code", &APIError{StatusCode: http.StatusBadRequest, Code: "nameAlreadyExists"}, IsConflict, true},
		{"permission", &APIError{StatusCode: http.StatusForbidden}, IsPermission, true},
		{"auth expired", &APIError{StatusCode: http.StatusUnauthorized}, IsAuthExpired, true},
		{"rate limited", &APIError{StatusCode: http.StatusTooManyRequests}, IsRateLimited, true},
		{"rate limited on 503", &APIError{StatusCode: http.StatusServiceUnavailable}, IsRateLimited, false},
		{"plain error", errors.New("boom"), IsNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestTransferErrorUnwrap(t *testing.T) {
	cause := &APIError{StatusCode: http.StatusBadRequest, Code: "invalidRange"}
	err := &TransferError{Offset: 4 << 20, Total: 9 << 20, Err: cause}

	assert.True(t, errors.Is(err, cause))
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "offset 4194304 of 9437184")
}
