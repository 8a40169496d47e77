package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/cache"
)

func TestGeocoderResolveCachesResults(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("expected format=json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"40.7128","lon":"-74.0060"}]`))
	}))
	defer upstream.Close()

	store := cache.NewMemory(16, 0)
	defer store.Close()
	g := NewGeocoder(upstream.URL, store, zerolog.Nop())

	lat, lon, err := g.Resolve(context.Background(), "1 Main St, New York, NY")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if lat != 40.7128 || lon != -74.0060 {
		t.Fatalf("unexpected coordinates: %f, %f", lat, lon)
	}

	// Second lookup is served from cache.
	if _, _, err := g.Resolve(context.Background(), "1 Main St, New York, NY"); err != nil {
		t.Fatalf("cached Resolve: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestGeocoderResolveNoResult(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	store := cache.NewMemory(16, time.Minute)
	defer store.Close()
	g := NewGeocoder(upstream.URL, store, zerolog.Nop())

	if _, _, err := g.Resolve(context.Background(), "nowhere"); err == nil {
		t.Fatal("empty result set must be an error")
	}
}

func TestGeocoderResolveUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	store := cache.NewMemory(16, 0)
	defer store.Close()
	g := NewGeocoder(upstream.URL, store, zerolog.Nop())

	if _, _, err := g.Resolve(context.Background(), "anywhere"); err == nil {
		t.Fatal("non-200 upstream must be an error")
	}
}
