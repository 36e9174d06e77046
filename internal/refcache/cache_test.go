package refcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := New()
	c.now = clock.now
	return c, clock
}

// --- GetOrFetch ---

func TestGetOrFetch_FetchesOnceWithinTTL(t *testing.T) {
	c, _ := newTestCache()
	fetches := 0
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		return []string{"Product", "Platform"}, nil
	}

	for i := 0; i < 2; i++ {
		v, err := c.GetOrFetch(context.Background(), "teams", 0, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if got := v.([]string); len(got) != 2 {
			t.Fatalf("payload = %v, want 2 teams", got)
		}
	}

	if fetches != 1 {
		t.Errorf("fetcher invoked %d times, want 1", fetches)
	}
}

func TestGetOrFetch_RefetchesAfterTTL(t *testing.T) {
	c, clock := newTestCache()
	fetches := 0
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		return "payload", nil
	}

	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetch)
	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetch)

	clock.advance(DefaultTTL + time.Second)

	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetch)

	if fetches != 2 {
		t.Errorf("fetcher invoked %d times, want 2 (once per TTL window)", fetches)
	}
}

func TestGetOrFetch_ExpiryBoundaryIsExclusive(t *testing.T) {
	c, clock := newTestCache()
	fetches := 0
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		return "payload", nil
	}

	_, _ = c.GetOrFetch(context.Background(), "users", time.Minute, fetch)

	// Exactly at the expiry instant the entry is already stale.
	clock.advance(time.Minute)
	_, _ = c.GetOrFetch(context.Background(), "users", time.Minute, fetch)

	if fetches != 2 {
		t.Errorf("fetcher invoked %d times, want 2", fetches)
	}
}

func TestGetOrFetch_ErrorNotCached(t *testing.T) {
	c, _ := newTestCache()
	fetches := 0
	boom := errors.New("network down")
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		if fetches == 1 {
			return nil, boom
		}
		return "payload", nil
	}

	if _, err := c.GetOrFetch(context.Background(), "projects", 0, fetch); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	v, err := c.GetOrFetch(context.Background(), "projects", 0, fetch)
	if err != nil {
		t.Fatalf("second fetch should succeed: %v", err)
	}
	if v != "payload" {
		t.Errorf("payload = %v", v)
	}
}

// --- Clear ---

func TestClear_SingleKey(t *testing.T) {
	c, _ := newTestCache()
	fetches := map[string]int{}
	fetchFor := func(key string) func(context.Context) (any, error) {
		return func(ctx context.Context) (any, error) {
			fetches[key]++
			return key, nil
		}
	}

	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetchFor("teams"))
	_, _ = c.GetOrFetch(context.Background(), "users", 0, fetchFor("users"))

	c.Clear("teams")

	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetchFor("teams"))
	_, _ = c.GetOrFetch(context.Background(), "users", 0, fetchFor("users"))

	if fetches["teams"] != 2 {
		t.Errorf("teams fetched %d times, want 2 after Clear", fetches["teams"])
	}
	if fetches["users"] != 1 {
		t.Errorf("users fetched %d times, want 1 (not cleared)", fetches["users"])
	}
}

func TestClear_All(t *testing.T) {
	c, _ := newTestCache()
	fetches := 0
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		return "x", nil
	}

	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetch)
	_, _ = c.GetOrFetch(context.Background(), "users", 0, fetch)

	c.Clear()

	_, _ = c.GetOrFetch(context.Background(), "teams", 0, fetch)
	_, _ = c.GetOrFetch(context.Background(), "users", 0, fetch)

	if fetches != 4 {
		t.Errorf("fetches = %d, want 4 after full clear", fetches)
	}
}

// --- Typed wrapper ---

type team struct {
	ID   string
	Name string
}

func TestFetch_TypedRoundTrip(t *testing.T) {
	c, _ := newTestCache()
	fetches := 0

	get := func() ([]team, error) {
		return Fetch(context.Background(), c, "teams", 0, func(ctx context.Context) ([]team, error) {
			fetches++
			return []team{{ID: "T1", Name: "Product"}}, nil
		})
	}

	first, err := get()
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := get()
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}
	if first[0] != second[0] || first[0].ID != "T1" {
		t.Errorf("typed payload mismatch: %v vs %v", first, second)
	}
}
