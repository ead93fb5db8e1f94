package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucdata/nucdata/internal/domain"
)

func fastRetrier(maxRetries int) *Retrier {
	return NewRetrier(RetrierOptions{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := fastRetrier(5).Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &domain.RetryableError{Err: errors.New("transient")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_PermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("bad request")
	err := fastRetrier(5).Retry(context.Background(), func() error {
		attempts++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := fastRetrier(2).Retry(context.Background(), func() error {
		attempts++
		return &domain.RetryableError{Err: errors.New("still down")}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts) // initial try plus two retries
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fastRetrier(5).Retry(ctx, func() error {
		return &domain.RetryableError{Err: errors.New("never")}
	})
	assert.Error(t, err)
}

func TestShouldRetryStatus(t *testing.T) {
	for _, code := range []int{429, 502, 503, 504} {
		assert.True(t, ShouldRetryStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 500} {
		assert.False(t, ShouldRetryStatus(code), "status %d", code)
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseRetryAfter("30"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("-5"))
}
