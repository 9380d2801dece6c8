package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTL_EmptyIsInvalid(t *testing.T) {
	c := NewTTL[string, int](time.Minute, nil)

	assert.False(t, c.IsValid())
	_, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.LastRefreshed().IsZero())
}

func TestTTL_PutGet(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
	c := NewTTL[string, []string](time.Minute, clock.Now)

	c.Put("SHP-1", []string{"A", "B"})

	assert.True(t, c.IsValid())
	v, ok := c.Get("SHP-1")
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, v)
	assert.Equal(t, clock.t, c.LastRefreshed())
}

func TestTTL_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](time.Minute, clock.Now)

	c.Put("k", 1)
	clock.Advance(59 * time.Second)
	assert.True(t, c.IsValid())

	clock.Advance(time.Second)
	assert.False(t, c.IsValid())
	_, ok := c.Get("k")
	assert.False(t, ok)

	// A put after expiry starts a fresh generation.
	c.Put("other", 2)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestTTL_ZeroNeverExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](0, clock.Now)

	c.Put("k", 1)
	clock.Advance(24 * time.Hour)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTTL_Invalidate(t *testing.T) {
	c := NewTTL[string, int](time.Minute, nil)
	c.Put("k", 1)

	c.Invalidate()

	assert.False(t, c.IsValid())
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.LastRefreshed().IsZero())
}
