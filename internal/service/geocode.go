package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/cache"
)

const geocodeCacheTTL = 24 * time.Hour

// Geocoder resolves street addresses to coordinates through a
// Nominatim-compatible endpoint, memoizing results in the cache.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Store
	logger     zerolog.Logger
}

type geocodeResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewGeocoder(baseURL string, store cache.Store, logger zerolog.Logger) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  store,
		logger: logger,
	}
}

// Resolve returns coordinates for an address. A cache hit skips the upstream
// call entirely; cache failures degrade to a direct lookup.
func (g *Geocoder) Resolve(ctx context.Context, address string) (float64, float64, error) {
	key := "geocode:" + address

	if cached, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		var res geocodeResult
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			return res.Lat, res.Lon, nil
		}
	}

	lat, lon, err := g.lookup(ctx, address)
	if err != nil {
		return 0, 0, err
	}

	encoded, err := json.Marshal(geocodeResult{Lat: lat, Lon: lon})
	if err == nil {
		if err := g.cache.Set(ctx, key, string(encoded), geocodeCacheTTL); err != nil {
			g.logger.Warn().Err(err).Msg("failed to cache geocode result")
		}
	}

	return lat, lon, nil
}

func (g *Geocoder) lookup(ctx context.Context, address string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", "meddispatch-backend")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result for address")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
