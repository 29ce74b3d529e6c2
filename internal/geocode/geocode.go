// Package geocode resolves coordinates to human-readable place names via a
// Nominatim-style reverse endpoint, honoring the provider's usage policy:
// an identifying User-Agent and at least one second between calls.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Place is a resolved name/address pair for a coordinate.
type Place struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Cache stores resolved places keyed by rounded coordinates so repeated
// lookups skip the provider entirely.
type Cache interface {
	Get(ctx context.Context, key string) (Place, bool, error)
	Set(ctx context.Context, key string, place Place) error
}

// Client is a rate-limited reverse-geocoding client.
type Client struct {
	base      string
	userAgent string
	client    *http.Client
	cache     Cache

	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient builds a client for the given reverse-geocoding base URL. cache
// may be nil to disable caching.
func NewClient(base, userAgent string, client *http.Client, cache Cache) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		base:        strings.TrimRight(base, "/"),
		userAgent:   userAgent,
		client:      client,
		cache:       cache,
		minInterval: time.Second,
	}
}

type reverseResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Reverse resolves a coordinate to a place, consulting the cache first.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	key := cacheKey(lat, lon)
	if c.cache != nil {
		if place, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return place, nil
		}
	}

	if err := c.throttle(ctx); err != nil {
		return Place{}, err
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Place{}, fmt.Errorf("reverse geocode: unexpected status %s", resp.Status)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Place{}, fmt.Errorf("reverse geocode: decode payload: %w", err)
	}

	place := Place{Name: payload.Name, Address: payload.DisplayName}
	if place.Name == "" {
		if i := strings.IndexByte(payload.DisplayName, ','); i > 0 {
			place.Name = payload.DisplayName[:i]
		} else {
			place.Name = payload.DisplayName
		}
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, place)
	}
	return place, nil
}

// throttle enforces the minimum spacing between consecutive provider calls.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	wait := c.lastRequest.Add(c.minInterval).Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Reserve the slot before sleeping so concurrent callers queue up.
	c.lastRequest = now.Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// cacheKey rounds to ~1 meter so nearby requests share an entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%.5f:%.5f", lat, lon)
}
