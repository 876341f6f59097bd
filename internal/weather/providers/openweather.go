package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	lang    string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates the provider. lang is the display language
// passed to the API; baseURL may be empty to use the public endpoint.
func NewOpenWeatherProvider(cfg HTTPClientConfig, apiKey, baseURL, lang string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
	}
	if cfg.Backoff.MaxInterval <= 0 {
		cfg.Backoff.MaxInterval = 5 * time.Second
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		httpCfg: cfg,
		circuit: newCircuitBreaker("openweather", cfg.BreakerThreshold),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// statusCode decodes the "cod" field, which the API sends as a number from
// /weather but as a string from /forecast and in error bodies. A missing or
// null cod decodes to 0 and counts as a failure.
type statusCode int

func (c *statusCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid cod %s: %w", b, err)
	}
	*c = statusCode(n)
	return nil
}

func (c statusCode) failed() bool {
	return c != http.StatusOK
}

// Current fetches current conditions by city name or by coordinates.
func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("openweather api key is not configured")
	}

	values := p.values()
	if loc.HasCoordinates() {
		values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
	} else {
		values.Set("q", loc.City)
	}

	var payload struct {
		Cod   statusCode `json:"cod"`
		Name  string     `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Pressure  float64 `json:"pressure"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []owmCondition `json:"weather"`
	}

	if err := p.getJSON(ctx, "weather", values, &payload); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return weather.Snapshot{}, fmt.Errorf("%w: %s: %v", weather.ErrLocationNotFound, loc.Key(), err)
		}
		return weather.Snapshot{}, err
	}
	if payload.Cod.failed() {
		return weather.Snapshot{}, fmt.Errorf("%w: %s: cod %d", weather.ErrLocationNotFound, loc.Key(), payload.Cod)
	}

	snap := weather.Snapshot{
		City:        payload.Name,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		PressureHPa: payload.Main.Pressure,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Condition:   mapOpenWeatherCondition(payload.Weather),
		Coordinates: weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		FetchedAt:   time.Now().UTC(),
	}
	if len(payload.Weather) > 0 {
		snap.Description = payload.Weather[0].Description
		snap.Icon = payload.Weather[0].Icon
	}
	return snap, nil
}

// Forecast fetches the 3-hourly forecast for city, in provider order.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string) ([]weather.ForecastPoint, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := p.values()
	values.Set("q", city)

	var payload struct {
		Cod  statusCode `json:"cod"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}

	if err := p.getJSON(ctx, "forecast", values, &payload); err != nil {
		return nil, err
	}
	if payload.Cod.failed() {
		return nil, fmt.Errorf("%w: %s: cod %d", weather.ErrLocationNotFound, city, payload.Cod)
	}

	points := make([]weather.ForecastPoint, 0, len(payload.List))
	for _, item := range payload.List {
		points = append(points, weather.ForecastPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			WindSpeed:   item.Wind.Speed,
			Humidity:    item.Main.Humidity,
		})
	}
	return points, nil
}

// UVIndex fetches the UV index at the given coordinates.
func (p *OpenWeatherProvider) UVIndex(ctx context.Context, at weather.Coordinates) (float64, error) {
	if p.apiKey == "" {
		return 0, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		Value *float64 `json:"value"`
	}
	if err := p.getJSON(ctx, "uvi", p.pointValues(at), &payload); err != nil {
		return 0, err
	}
	if payload.Value == nil {
		return 0, fmt.Errorf("uvi response has no value")
	}
	return *payload.Value, nil
}

// AirQuality fetches the air quality index at the given coordinates.
func (p *OpenWeatherProvider) AirQuality(ctx context.Context, at weather.Coordinates) (weather.AirQualityLevel, error) {
	if p.apiKey == "" {
		return 0, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}
	if err := p.getJSON(ctx, "air_pollution", p.pointValues(at), &payload); err != nil {
		return 0, err
	}
	if len(payload.List) == 0 {
		return 0, fmt.Errorf("air pollution response has no entries")
	}
	return weather.AirQualityLevel(payload.List[0].Main.AQI), nil
}

// values returns the query parameters shared by the localized endpoints.
func (p *OpenWeatherProvider) values() url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if p.lang != "" {
		values.Set("lang", p.lang)
	}
	return values
}

func (p *OpenWeatherProvider) pointValues(at weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	return values
}

func (p *OpenWeatherProvider) getJSON(ctx context.Context, endpoint string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, endpoint, buildRequest)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// mapOpenWeatherCondition normalizes the condition keyword. Only the four
// keywords the dashboard localizes are recognized; everything else is
// unknown so callers fall back to the raw description.
func mapOpenWeatherCondition(items []owmCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	default:
		return weather.ConditionUnknown
	}
}
