package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var configKeys = []string{
	"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "OPENWEATHER_TILE_URL", "BASE_MAP_TILE_URL",
	"CITY_SEARCH_URL", "GEOLOCATION_URL", "WEATHER_LANG", "TIMEZONE", "HTTP_TIMEOUT",
	"PROVIDER_MAX_RETRIES", "PROVIDER_BREAKER_THRESHOLD", "SUGGEST_DEBOUNCE", "POINTER_DEBOUNCE",
	"MAP_LAYER_POLICY", "MAP_DEFAULT_LAT", "MAP_DEFAULT_LON", "MAP_DEFAULT_ZOOM", "FORECAST_POINTS",
	"REFRESH_INTERVAL", "BOOTSTRAP_GEOLOCATE", "MAX_ALERTS", "PORT", "LOG_LEVEL", "LOG_FORMAT",
	"SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, language.Russian, cfg.Language)
	assert.Equal(t, time.Local, cfg.TimeZone)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.ProviderMaxRetries)
	assert.Zero(t, cfg.ProviderBreakerThreshold)
	assert.Zero(t, cfg.SuggestDebounce)
	assert.Zero(t, cfg.PointerDebounce)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Equal(t, "replace", cfg.MapLayerPolicy)
	assert.Equal(t, 55.76, cfg.MapDefaultLat)
	assert.Equal(t, 37.64, cfg.MapDefaultLon)
	assert.Equal(t, 10, cfg.MapDefaultZoom)
	assert.Equal(t, 5, cfg.ForecastPoints)
	assert.True(t, cfg.BootstrapGeolocate)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("WEATHER_LANG", "en")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PROVIDER_MAX_RETRIES", "2")
	t.Setenv("PROVIDER_BREAKER_THRESHOLD", "5")
	t.Setenv("SUGGEST_DEBOUNCE", "250ms")
	t.Setenv("MAP_LAYER_POLICY", "Accumulate")
	t.Setenv("MAP_DEFAULT_LAT", "59.93")
	t.Setenv("REFRESH_INTERVAL", "15m")
	t.Setenv("BOOTSTRAP_GEOLOCATE", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.OpenWeatherAPIKey)
	assert.Equal(t, language.English, cfg.Language)
	assert.Equal(t, time.UTC, cfg.TimeZone)
	assert.Equal(t, 2, cfg.ProviderMaxRetries)
	assert.Equal(t, uint32(5), cfg.ProviderBreakerThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.SuggestDebounce)
	assert.Equal(t, "accumulate", cfg.MapLayerPolicy)
	assert.Equal(t, 59.93, cfg.MapDefaultLat)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.False(t, cfg.BootstrapGeolocate)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"HTTP_TIMEOUT":               "soon",
		"SUGGEST_DEBOUNCE":           "-1s",
		"WEATHER_LANG":               "not a tag!",
		"TIMEZONE":                   "Mars/Olympus_Mons",
		"MAP_LAYER_POLICY":           "dedupe",
		"MAP_DEFAULT_LON":            "east",
		"BOOTSTRAP_GEOLOCATE":        "maybe",
		"PROVIDER_MAX_RETRIES":       "-1",
		"PROVIDER_BREAKER_THRESHOLD": "-3",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}
