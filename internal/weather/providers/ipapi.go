package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultGeolocationURL is the ip-api.com endpoint; it needs no parameters.
const DefaultGeolocationURL = "http://ip-api.com/json"

// IPAPIGeolocator implements weather.Geolocator using ip-api.com.
type IPAPIGeolocator struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewIPAPIGeolocator(cfg HTTPClientConfig, url string) *IPAPIGeolocator {
	if url == "" {
		url = DefaultGeolocationURL
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
	}
	return &IPAPIGeolocator{
		url:     url,
		httpCfg: cfg,
		circuit: newCircuitBreaker("ipapi", cfg.BreakerThreshold),
	}
}

// Locate guesses the caller's city from its public IP address.
func (g *IPAPIGeolocator) Locate(ctx context.Context) (weather.GeoGuess, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, g.url, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, "geolocation", buildRequest)
	if err != nil {
		return weather.GeoGuess{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Status  string   `json:"status"`
		Message string   `json:"message"`
		City    string   `json:"city"`
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.GeoGuess{}, fmt.Errorf("decode geolocation response: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return weather.GeoGuess{}, fmt.Errorf("geolocation failed: %s", payload.Message)
	}

	guess := weather.GeoGuess{City: payload.City}
	if payload.Lat != nil && payload.Lon != nil {
		guess.Coordinates = &weather.Coordinates{Lat: *payload.Lat, Lon: *payload.Lon}
	}
	return guess, nil
}
