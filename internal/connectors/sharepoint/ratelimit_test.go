package sharepoint

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func throttledResponse(status int, retryAfter string) *http.Response {
	resp := &http.Response{StatusCode: status, Header: http.Header{}}
	if retryAfter != "" {
		resp.Header.Set(HeaderRetryAfter, retryAfter)
	}
	return resp
}

func TestRateLimiterIgnoresSuccessResponses(t *testing.T) {
	r := NewRateLimiter()
	r.UpdateFromResponse(throttledResponse(http.StatusOK, "30"))
	assert.True(t, r.retryAt.IsZero())
}

func TestRateLimiterRecordsRetryAfter(t *testing.T) {
	r := NewRateLimiter()
	r.UpdateFromResponse(throttledResponse(http.StatusTooManyRequests, "30"))

	wait := time.Until(r.retryAt)
	assert.Greater(t, wait, 25*time.Second)
	assert.LessOrEqual(t, wait, 30*time.Second)
}

func TestRateLimiterIgnoresMalformedRetryAfter(t *testing.T) {
	r := NewRateLimiter()
	r.UpdateFromResponse(throttledResponse(http.StatusServiceUnavailable, "soon"))
	assert.True(t, r.retryAt.IsZero())

	r.UpdateFromResponse(throttledResponse(http.StatusServiceUnavailable, ""))
	assert.True(t, r.retryAt.IsZero())

	r.UpdateFromResponse(throttledResponse(http.StatusServiceUnavailable, "-5"))
	assert.True(t, r.retryAt.IsZero())
}

func TestRateLimiterWaitHonoursContext(t *testing.T) {
	r := NewRateLimiter()
	r.UpdateFromResponse(throttledResponse(http.StatusTooManyRequests, "60"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiterWaitWithoutBackpressure(t *testing.T) {
	r := NewRateLimiter()
	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second, "a fresh bucket should not block")
}
