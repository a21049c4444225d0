package cache

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manual clock for driving expiry in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestGetFreshEntry(t *testing.T) {
	clk := newFakeClock()
	c := New[string, string](time.Hour, clk.Now)

	c.Set("js-sdk", "v2.1.0 notes")

	got, ok := c.Get("js-sdk")
	if !ok || got != "v2.1.0 notes" {
		t.Fatalf("Get = (%q, %v), want fresh hit", got, ok)
	}
}

func TestGetExpiredEntry(t *testing.T) {
	clk := newFakeClock()
	c := New[string, string](time.Hour, clk.Now)

	c.Set("js-sdk", "old notes")
	clk.Advance(time.Hour)

	if _, ok := c.Get("js-sdk"); ok {
		t.Error("entry at exactly TTL age should be expired")
	}

	// Stale read still works until eviction.
	got, ok := c.GetStale("js-sdk")
	if !ok || got != "old notes" {
		t.Errorf("GetStale = (%q, %v), want stale value", got, ok)
	}
}

func TestSetResetsExpiry(t *testing.T) {
	clk := newFakeClock()
	c := New[string, int](time.Hour, clk.Now)

	c.Set("k", 1)
	clk.Advance(50 * time.Minute)
	c.Set("k", 2)
	clk.Advance(50 * time.Minute)

	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Errorf("Get = (%d, %v), want refreshed entry", got, ok)
	}
}

func TestEvict(t *testing.T) {
	clk := newFakeClock()
	c := New[string, int](time.Hour, clk.Now)

	c.Set("old", 1)
	clk.Advance(30 * time.Minute)
	c.Set("young", 2)
	clk.Advance(30 * time.Minute)

	if removed := c.Evict(); removed != 1 {
		t.Errorf("Evict removed %d, want 1", removed)
	}
	if _, ok := c.GetStale("old"); ok {
		t.Error("evicted entry should be gone even for stale reads")
	}
	if _, ok := c.Get("young"); !ok {
		t.Error("young entry should survive eviction")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := New[string, int](time.Hour, nil)
	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.GetStale("k"); ok {
		t.Error("deleted entry still present")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int](time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(j%10, n)
				c.Get(j % 10)
				c.Evict()
			}
		}(i)
	}
	wg.Wait()
}
