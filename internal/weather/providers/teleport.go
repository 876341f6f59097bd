package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultCitySearchURL is the Teleport city search endpoint.
const DefaultCitySearchURL = "http://api.teleport.org/api/cities/"

// TeleportCitySearcher implements weather.CitySearcher against the Teleport API.
type TeleportCitySearcher struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewTeleportCitySearcher(cfg HTTPClientConfig, baseURL string) *TeleportCitySearcher {
	if baseURL == "" {
		baseURL = DefaultCitySearchURL
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
	}
	return &TeleportCitySearcher{
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("teleport", cfg.BreakerThreshold),
	}
}

// SearchCities returns the full display names of cities matching query. The
// query is sent as typed, with no minimum length.
func (s *TeleportCitySearcher) SearchCities(ctx context.Context, query string) ([]string, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("search", query)
		return http.NewRequest(http.MethodGet, s.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, "city_search", buildRequest)
	if err != nil {
		return nil, fmt.Errorf("city search request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Embedded *struct {
			Results *[]struct {
				MatchingFullName string `json:"matching_full_name"`
			} `json:"city:search-results"`
		} `json:"_embedded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode city search response: %w", err)
	}
	if payload.Embedded == nil || payload.Embedded.Results == nil {
		return nil, errors.New("city search response has no search results")
	}

	results := *payload.Embedded.Results
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.MatchingFullName)
	}
	return names, nil
}
