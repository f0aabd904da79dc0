package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.rps, tt.burst)
			defer l.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if l.Allow("client") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestLimiter_IndependentKeys(t *testing.T) {
	l := New(1, 1)
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "first key should be exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "second key should be independent")
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_EvictIdle(t *testing.T) {
	l := New(1, 1)
	defer l.Stop()
	l.maxIdle = 10 * time.Millisecond

	l.Allow("10.0.0.1")
	assert.Equal(t, 1, l.Len())

	time.Sleep(20 * time.Millisecond)
	l.evictIdle()
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	l := New(100, 1) // refill every 10ms
	defer l.Stop()

	assert.True(t, l.Allow("client"))
	assert.False(t, l.Allow("client"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("client"))
}
