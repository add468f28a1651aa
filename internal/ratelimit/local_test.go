package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAllowsBurstUpToQuota(t *testing.T) {
	limiter := NewLocal(10)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for range 10 {
		require.NoError(t, limiter.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond,
		"a fresh limiter should not block within the quota")
}

func TestLocalBlocksPastQuotaUntilCancelled(t *testing.T) {
	limiter := NewLocal(1)
	require.NoError(t, limiter.Wait(context.Background()))

	// The next token is a minute away; cancellation must release the wait.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := limiter.Wait(ctx)
	assert.Error(t, err)
}
