package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurst(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         3,
	})

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client-a"), "request %d should pass", i)
	}
	assert.False(t, rl.Allow("client-a"))
}

func TestAllowIsolatesSources(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         1,
	})

	assert.True(t, rl.Allow("client-a"))
	assert.False(t, rl.Allow("client-a"))
	assert.True(t, rl.Allow("client-b"))
}

func TestRemaining(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         5,
	})

	assert.Equal(t, 5, rl.Remaining("client-a"))

	rl.Allow("client-a")
	rl.Allow("client-a")

	assert.Equal(t, 3, rl.Remaining("client-a"))
}

func TestRefillKeepsFractionalProgress(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 10, MaxBurst: 5}).(*RateLimiter)

	// At 10 tokens/sec a 50ms step credits half a token; four steps must
	// accumulate two whole tokens instead of flooring each one to zero.
	state := bucketState{Tokens: 0, LastFill: 0}
	for ms := int64(50); ms <= 200; ms += 50 {
		state = rl.refillTokens(state, ms)
	}

	assert.InDelta(t, 2.0, state.Tokens, 1e-9)
}

func TestAllowRecoversUnderFrequentPolling(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 100, MaxBurst: 2})

	assert.True(t, rl.Allow("client-a"))
	assert.True(t, rl.Allow("client-a"))
	assert.False(t, rl.Allow("client-a"))

	// Poll faster than the 10ms token interval; the bucket must still refill.
	recovered := false
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if rl.Allow("client-a") {
			recovered = true
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	assert.True(t, recovered, "drained bucket never refilled under frequent polling")
}

func TestGetMaxBurstDefaultsToRate(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 7})
	assert.Equal(t, 7, rl.GetMaxBurst())
}

func TestGetSourceKey(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		SourceHeaderKey:  "X-Forwarded-For",
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", rl.GetSourceKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", rl.GetSourceKey(r))
}

func TestInMemoryCacheExpiry(t *testing.T) {
	cache := NewInMemory()
	defer cache.Close()

	state := bucketState{Tokens: 2, LastFill: 42}
	assert.NoError(t, cache.SetWithExpiration("k", state, 0))

	got, err := cache.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, state, got)

	_, err = cache.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
