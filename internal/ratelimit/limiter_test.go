package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Burst(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now), "burst exhausted")
	assert.True(t, l.Allow("b", now), "keys are independent")

	assert.True(t, l.Allow("a", now.Add(time.Second)), "one token refills per second")
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0, 10, 0)
	assert.Nil(t, l)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("a", time.Now()))
	}
	assert.Equal(t, 0, l.Size())
}

func TestLimiter_EmptyKeyIsNotLimited(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()
	assert.True(t, l.Allow(" ", now))
	assert.True(t, l.Allow(" ", now))
	assert.Equal(t, 0, l.Size())
}

func TestLimiter_EvictsIdleKeys(t *testing.T) {
	l := New(1000, 1000, time.Minute)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Allow("idle", start)

	later := start.Add(2 * time.Minute)
	for i := 0; i < 511; i++ {
		l.Allow("busy", later)
	}
	assert.Equal(t, 1, l.Size())
}

func TestKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"

	assert.Equal(t, "account:alice", Key(r, "alice"))
	assert.Equal(t, "ip:10.0.0.7", Key(r, ""))

	r.RemoteAddr = "pipe"
	assert.Equal(t, "ip:pipe", Key(r, ""))

	r.RemoteAddr = ""
	assert.Equal(t, "ip:unknown", Key(r, ""))
}
