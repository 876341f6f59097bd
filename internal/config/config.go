package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherTileURL string
	BaseMapTileURL     string
	CitySearchURL      string
	GeolocationURL     string

	// Language selects the provider's description language and the
	// dashboard vocabulary.
	Language language.Tag
	TimeZone *time.Location

	// Outbound HTTP. Retries and the breaker are off by default.
	HTTPTimeout              time.Duration
	ProviderMaxRetries       int
	ProviderBreakerThreshold uint32

	SuggestDebounce time.Duration
	PointerDebounce time.Duration

	MapLayerPolicy string
	MapDefaultLat  float64
	MapDefaultLon  float64
	MapDefaultZoom int

	ForecastPoints     int
	RefreshInterval    time.Duration // 0 = never
	BootstrapGeolocate bool
	MaxAlerts          int

	Port            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: os.Getenv("OPENWEATHER_BASE_URL"),
		OpenWeatherTileURL: os.Getenv("OPENWEATHER_TILE_URL"),
		BaseMapTileURL:     os.Getenv("BASE_MAP_TILE_URL"),
		CitySearchURL:      os.Getenv("CITY_SEARCH_URL"),
		GeolocationURL:     os.Getenv("GEOLOCATION_URL"),
		MapLayerPolicy:     strings.ToLower(getenvDefault("MAP_LAYER_POLICY", "replace")),
		Port:               getenvDefault("PORT", "8080"),
		LogLevel:           getenvDefault("LOG_LEVEL", "info"),
		LogFormat:          getenvDefault("LOG_FORMAT", "text"),
		ForecastPoints:     getenvInt("FORECAST_POINTS", 5),
		MapDefaultZoom:     getenvInt("MAP_DEFAULT_ZOOM", 10),
		MaxAlerts:          getenvInt("MAX_ALERTS", 20),
	}

	var err error
	if cfg.Language, err = language.Parse(getenvDefault("WEATHER_LANG", "ru")); err != nil {
		return nil, fmt.Errorf("invalid WEATHER_LANG: %w", err)
	}
	if cfg.TimeZone, err = time.LoadLocation(getenvDefault("TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"SUGGEST_DEBOUNCE", "0s", &cfg.SuggestDebounce},
		{"POINTER_DEBOUNCE", "0s", &cfg.PointerDebounce},
		{"REFRESH_INTERVAL", "0s", &cfg.RefreshInterval},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", d.key)
		}
		*d.dst = v
	}

	cfg.ProviderMaxRetries = getenvInt("PROVIDER_MAX_RETRIES", 0)
	if cfg.ProviderMaxRetries < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_MAX_RETRIES: must not be negative")
	}
	threshold := getenvInt("PROVIDER_BREAKER_THRESHOLD", 0)
	if threshold < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_BREAKER_THRESHOLD: must not be negative")
	}
	cfg.ProviderBreakerThreshold = uint32(threshold)

	if cfg.MapDefaultLat, err = getenvFloat("MAP_DEFAULT_LAT", 55.76); err != nil {
		return nil, err
	}
	if cfg.MapDefaultLon, err = getenvFloat("MAP_DEFAULT_LON", 37.64); err != nil {
		return nil, err
	}

	switch cfg.MapLayerPolicy {
	case "replace", "accumulate":
	default:
		return nil, fmt.Errorf("invalid MAP_LAYER_POLICY %q: want replace or accumulate", cfg.MapLayerPolicy)
	}

	cfg.BootstrapGeolocate, err = strconv.ParseBool(getenvDefault("BOOTSTRAP_GEOLOCATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOTSTRAP_GEOLOCATE: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
