package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestLimiter_BudgetAllowsFiveBlocksSixth(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(5, 5*time.Minute, clock.Now)

	for i := 1; i <= 5; i++ {
		decision := lim.CheckAndRecord("user-1")
		assert.True(t, decision.Allowed, "attempt %d must be allowed", i)
	}

	decision := lim.CheckAndRecord("user-1")
	require.False(t, decision.Allowed, "sixth attempt must be blocked")
	assert.Positive(t, decision.RetryAfter)
	assert.LessOrEqual(t, decision.RetryAfter, 5*time.Minute)
}

func TestLimiter_RetryAfterShrinksAsWindowAges(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(2, 5*time.Minute, clock.Now)

	lim.CheckAndRecord("user-1")
	lim.CheckAndRecord("user-1")

	clock.Advance(2 * time.Minute)
	decision := lim.CheckAndRecord("user-1")
	require.False(t, decision.Allowed)
	assert.Equal(t, 3*time.Minute, decision.RetryAfter)
}

func TestLimiter_WindowElapseResetsCounter(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(2, 5*time.Minute, clock.Now)

	lim.CheckAndRecord("user-1")
	lim.CheckAndRecord("user-1")
	require.False(t, lim.CheckAndRecord("user-1").Allowed)

	clock.Advance(5 * time.Minute)

	decision := lim.CheckAndRecord("user-1")
	assert.True(t, decision.Allowed, "a fresh window starts over")
}

func TestLimiter_BlockedAttemptsDoNotExtendWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(1, 5*time.Minute, clock.Now)

	lim.CheckAndRecord("user-1")

	// Hammering during the block must not push the reset point out.
	for i := 0; i < 10; i++ {
		clock.Advance(20 * time.Second)
		require.False(t, lim.CheckAndRecord("user-1").Allowed)
	}

	clock.Advance(5 * time.Minute)
	assert.True(t, lim.CheckAndRecord("user-1").Allowed)
}

func TestLimiter_ClearRestoresBudget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(1, 5*time.Minute, clock.Now)

	lim.CheckAndRecord("user-1")
	require.False(t, lim.CheckAndRecord("user-1").Allowed)

	lim.Clear("user-1")

	assert.True(t, lim.CheckAndRecord("user-1").Allowed)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(1, 5*time.Minute, clock.Now)

	lim.CheckAndRecord("user-1")
	require.False(t, lim.CheckAndRecord("user-1").Allowed)

	assert.True(t, lim.CheckAndRecord("user-2").Allowed)
}

func TestLimiter_ConcurrentAttemptsNeverExceedBudget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewWithClock(5, 5*time.Minute, clock.Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if lim.CheckAndRecord("user-1").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
}
