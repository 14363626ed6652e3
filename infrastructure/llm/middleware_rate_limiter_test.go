package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware_AllowsRequestsWithinBurst(t *testing.T) {
	// Given a limiter with burst capacity for all requests
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(100), 3)(mock)

	// When making requests within the burst
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _, _, err := wrapped.DoRequest(ctx, "test prompt", nil)
		require.NoError(t, err, "request %d within burst should succeed", i)
	}

	// Then all requests should reach the core
	assert.Equal(t, 3, mock.GetCallCount(), "all requests should pass through")
}

func TestRateLimitMiddleware_BlocksWhenLimitExhausted(t *testing.T) {
	// Given a limiter that refills very slowly
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(0.1), 1)(mock)

	// When the burst token is consumed and another request arrives
	ctx := context.Background()
	_, _, _, err := wrapped.DoRequest(ctx, "first", nil)
	require.NoError(t, err, "first request should consume the burst token")

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, _, err = wrapped.DoRequest(shortCtx, "second", nil)

	// Then the second request should fail waiting for a token
	require.Error(t, err, "second request should fail")
	assert.Contains(t, err.Error(), "rate limit", "error should mention rate limiting")
	assert.Equal(t, 1, mock.GetCallCount(), "blocked request should not reach the core")
}

func TestRateLimitMiddleware_SharesLimiterAcrossClients(t *testing.T) {
	// Given one middleware value wrapping two separate cores
	middleware := RateLimitMiddleware(rate.Limit(0.1), 1)
	first := NewMockCoreLLM()
	second := NewMockCoreLLM()
	wrappedFirst := middleware(first)
	wrappedSecond := middleware(second)

	// When the first client consumes the only token
	ctx := context.Background()
	_, _, _, err := wrappedFirst.DoRequest(ctx, "first", nil)
	require.NoError(t, err, "first request should succeed")

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, _, err = wrappedSecond.DoRequest(shortCtx, "second", nil)

	// Then the second client should be limited by the shared budget
	require.Error(t, err, "second client should hit the shared limit")
	assert.Equal(t, 0, second.GetCallCount(), "limited request should not reach the core")
}

func TestRateLimitMiddleware_PassesThroughModel(t *testing.T) {
	// Given wrapped middleware
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(10), 1)(mock)

	// When reading and updating the model
	assert.Equal(t, "test-model", wrapped.GetModel(), "model should pass through")
	wrapped.SetModel("new-model")

	// Then the wrapped implementation should see the update
	assert.Equal(t, "new-model", mock.GetModel(), "SetModel should reach the core")
}
