package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(limit int, window time.Duration, start time.Time) (*Gate, *time.Time) {
	g := New(limit, window)
	current := start
	g.now = func() time.Time { return current }
	return g, &current
}

func TestGate_AdmitsUpToLimit(t *testing.T) {
	g, _ := newTestGate(20, time.Minute, time.Unix(1000, 0))

	for i := 0; i < 20; i++ {
		admitted, _ := g.Admit("10.0.0.1")
		require.True(t, admitted, "request %d should be admitted", i+1)
	}

	admitted, retryAfter := g.Admit("10.0.0.1")
	assert.False(t, admitted)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestGate_RejectionDoesNotAdmitTimestamp(t *testing.T) {
	g, now := newTestGate(2, time.Minute, time.Unix(1000, 0))

	g.Admit("c")
	g.Admit("c")
	admitted, _ := g.Admit("c")
	require.False(t, admitted)

	// The rejected request did not consume a slot: once the first entry
	// slides out, exactly one new request fits.
	*now = now.Add(61 * time.Second)
	admitted, _ = g.Admit("c")
	assert.True(t, admitted)
}

func TestGate_WindowSlides(t *testing.T) {
	start := time.Unix(1000, 0)
	g, now := newTestGate(2, time.Minute, start)

	g.Admit("c") // t=0
	*now = start.Add(30 * time.Second)
	g.Admit("c") // t=30

	admitted, retryAfter := g.Admit("c")
	require.False(t, admitted)
	assert.Equal(t, 30*time.Second, retryAfter)

	*now = start.Add(61 * time.Second) // first entry has slid out
	admitted, _ = g.Admit("c")
	assert.True(t, admitted)
}

func TestGate_ClientsAreIndependent(t *testing.T) {
	g, _ := newTestGate(1, time.Minute, time.Unix(1000, 0))

	admitted, _ := g.Admit("a")
	require.True(t, admitted)
	admitted, _ = g.Admit("b")
	require.True(t, admitted)

	admitted, _ = g.Admit("a")
	assert.False(t, admitted)
}

func TestGate_SweepDropsIdleWindows(t *testing.T) {
	start := time.Unix(1000, 0)
	g, now := newTestGate(5, time.Minute, start)

	g.Admit("idle")
	*now = start.Add(10 * time.Second)
	g.Admit("active")

	*now = start.Add(65 * time.Second)
	removed := g.Sweep()
	assert.Equal(t, 1, removed)

	*now = start.Add(2 * time.Minute)
	removed = g.Sweep()
	assert.Equal(t, 1, removed)
}

func TestGate_ConcurrentAdmit(t *testing.T) {
	g := New(1000, time.Minute)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				g.Admit("shared")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	// 800 concurrent requests fit under the limit of 1000, so the next
	// one must still be admitted and no timestamps were lost to races.
	admitted, _ := g.Admit("shared")
	assert.True(t, admitted)
}
