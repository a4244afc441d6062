package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrnaut/euphoxide-go/api"
)

func TestRateLimiterAllowsUpToBurst(t *testing.T) {
	r := NewRateLimiter[string](RateLimit{MaxBurst: 2, RefillInterval: time.Hour})

	assert.True(t, r.Allow("a"))
	assert.True(t, r.Allow("a"))
	assert.False(t, r.Allow("a"), "third call within the burst window should be denied")
}

func TestRateLimiterTracksKeysIndependently(t *testing.T) {
	r := NewRateLimiter[string](RateLimit{MaxBurst: 1, RefillInterval: time.Hour})

	assert.True(t, r.Allow("a"))
	assert.True(t, r.Allow("b"), "a separate key must have its own bucket")
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	r := NewRateLimiter[string](RateLimit{MaxBurst: 1, RefillInterval: 5 * time.Millisecond})

	assert.True(t, r.Allow("a"))
	assert.False(t, r.Allow("a"))

	time.Sleep(10 * time.Millisecond)
	assert.True(t, r.Allow("a"), "a bucket should refill after RefillInterval elapses")
}

func TestLimitedDropsBeyondLimitButStillPropagates(t *testing.T) {
	var calls int
	inner := General[string]("ping", func(ctx context.Context, cctx *Context[string], msg api.SendEvent, args string) (Propagate, error) {
		calls++
		return PropagateYes, nil
	})

	limiter := NewRateLimiter[SessionKey](RateLimit{MaxBurst: 1, RefillInterval: time.Hour})
	limited := Limited[string](inner, limiter)

	msg := api.SendEvent{}
	msg.Content = "!ping"
	msg.Sender = api.SessionView{SessionID: "sess-1"}

	propagate, err := limited.Execute(context.Background(), nil, msg)
	require.NoError(t, err)
	assert.Equal(t, PropagateYes, propagate)
	assert.Equal(t, 1, calls)

	propagate, err = limited.Execute(context.Background(), nil, msg)
	require.NoError(t, err)
	assert.Equal(t, PropagateYes, propagate, "a throttled invocation still propagates to later commands")
	assert.Equal(t, 1, calls, "the wrapped command must not run once its sender is rate-limited")
}
