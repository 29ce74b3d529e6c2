package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type memoryCache struct {
	entries map[string]Place
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]Place{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (Place, bool, error) {
	place, ok := c.entries[key]
	return place, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, place Place) error {
	c.entries[key] = place
	c.sets++
	return nil
}

func TestReverse(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if ua := r.Header.Get("User-Agent"); ua != "harborlight-test/1.0" {
			t.Errorf("User-Agent=%q, provider policy requires an identifying agent", ua)
		}
		if r.URL.Path != "/reverse" {
			t.Errorf("path=%q want /reverse", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format=%q want json", got)
		}
		w.Write([]byte(`{"name": "Pier 3", "display_name": "Pier 3, Harbor District, Lübeck"}`))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	c := NewClient(srv.URL, "harborlight-test/1.0", srv.Client(), cache)
	c.minInterval = 0 // no provider throttling against the local test server

	place, err := c.Reverse(context.Background(), 53.87, 10.69)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if place.Name != "Pier 3" {
		t.Errorf("Name=%q want Pier 3", place.Name)
	}
	if place.Address != "Pier 3, Harbor District, Lübeck" {
		t.Errorf("Address=%q", place.Address)
	}

	// Second lookup of the same coordinate must come from the cache.
	if _, err := c.Reverse(context.Background(), 53.87, 10.69); err != nil {
		t.Fatalf("Reverse (cached): %v", err)
	}
	if requests != 1 {
		t.Errorf("provider hit %d times, want 1", requests)
	}
	if cache.sets != 1 {
		t.Errorf("cache.sets=%d want 1", cache.sets)
	}
}

func TestReverseFallsBackToDisplayName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"display_name": "Außenmole, Travemünde, Lübeck"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "harborlight-test/1.0", srv.Client(), nil)
	c.minInterval = 0

	place, err := c.Reverse(context.Background(), 53.95, 10.87)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if place.Name != "Außenmole" {
		t.Errorf("Name=%q want first display_name segment", place.Name)
	}
}

func TestThrottleSpacesRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"display_name": "x"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "harborlight-test/1.0", srv.Client(), nil)
	c.minInterval = 50 * time.Millisecond

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Reverse(context.Background(), 53.0, 10.0); err != nil {
			t.Fatalf("Reverse: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("three calls took %s, want at least two spacing intervals", elapsed)
	}
}

func TestReverseErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "harborlight-test/1.0", srv.Client(), nil)
	c.minInterval = 0

	if _, err := c.Reverse(context.Background(), 53.0, 10.0); err == nil {
		t.Fatal("Reverse accepted a 429 response")
	}
}
