package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const testAPIKey = "test-key"

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Client: &http.Client{Timeout: 5 * time.Second},
		Backoff: BackoffConfig{
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
		Metrics: observability.NewMetricsForTesting(),
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenWeatherProvider, HTTPClientConfig) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := testHTTPConfig()
	return NewOpenWeatherProvider(cfg, testAPIKey, srv.URL, "ru"), cfg
}

func TestOpenWeather_CurrentByCity(t *testing.T) {
	p, cfg := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Moscow", q.Get("q"))
		assert.Equal(t, testAPIKey, q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "ru", q.Get("lang"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cod": 200,
			"name": "Москва",
			"coord": {"lat": 55.75, "lon": 37.62},
			"main": {"temp": 15.4, "feels_like": 14.6, "pressure": 1013, "humidity": 67},
			"wind": {"speed": 3.5},
			"weather": [{"main": "Clouds", "description": "пасмурно", "icon": "04d"}]
		}`))
	})

	snap, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.NoError(t, err)

	assert.Equal(t, "Москва", snap.City)
	assert.Equal(t, 15.4, snap.Temperature)
	assert.Equal(t, 14.6, snap.FeelsLike)
	assert.Equal(t, 1013.0, snap.PressureHPa)
	assert.Equal(t, 67.0, snap.Humidity)
	assert.Equal(t, 3.5, snap.WindSpeed)
	assert.Equal(t, "пасмурно", snap.Description)
	assert.Equal(t, "04d", snap.Icon)
	assert.Equal(t, weather.ConditionCloudy, snap.Condition)
	assert.Equal(t, weather.Coordinates{Lat: 55.75, Lon: 37.62}, snap.Coordinates)
	assert.InDelta(t, 1, testutil.ToFloat64(cfg.Metrics.ProviderRequests.WithLabelValues("weather", "success")), 0)
}

func TestOpenWeather_CurrentByCoordinates(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("lat"))
		assert.Equal(t, "20.5", q.Get("lon"))
		assert.Empty(t, q.Get("q"))
		_, _ = w.Write([]byte(`{"cod":200,"name":"","main":{"temp":30},"weather":[{"main":"Haze","description":"мгла"}]}`))
	})

	snap, err := p.Current(context.Background(), weather.PointLocation(10, 20.5))
	require.NoError(t, err)
	assert.Equal(t, weather.ConditionUnknown, snap.Condition)
	assert.Equal(t, "мгла", snap.Description)
}

func TestOpenWeather_CurrentNotFound(t *testing.T) {
	p, cfg := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Nonexistentville"))
	require.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.InDelta(t, 1, testutil.ToFloat64(cfg.Metrics.ProviderRequests.WithLabelValues("weather", "not_found")), 0)
}

func TestOpenWeather_CurrentNonSuccessCodeInBody(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Nowhere"))
	require.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenWeather_MissingCodIsNotFound(t *testing.T) {
	for _, body := range []string{
		`{"message":"bad"}`,
		`{"cod":null,"name":"Moscow"}`,
	} {
		t.Run(body, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			snap, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
			require.ErrorIs(t, err, weather.ErrLocationNotFound)
			assert.Zero(t, snap)

			points, err := p.Forecast(context.Background(), "Moscow")
			require.ErrorIs(t, err, weather.ErrLocationNotFound)
			assert.Nil(t, points)
		})
	}
}

func TestOpenWeather_ServerErrorIsNotNotFound(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrLocationNotFound)
	assert.ErrorIs(t, err, errServerError)
}

func TestOpenWeather_MalformedBody(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenWeather_MissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(testHTTPConfig(), "", "http://127.0.0.1:1", "ru")
	_, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.Error(t, err)
}

func TestOpenWeather_Forecast(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "Moscow", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"cod":"200","list":[
			{"dt":1760788800,"main":{"temp":12.6,"humidity":70},"wind":{"speed":2.4}},
			{"dt":1760799600,"main":{"temp":10.2,"humidity":75},"wind":{"speed":1.6}}
		]}`))
	})

	points, err := p.Forecast(context.Background(), "Moscow")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1760788800, 0).UTC(), points[0].Time)
	assert.Equal(t, 12.6, points[0].Temperature)
	assert.Equal(t, 2.4, points[0].WindSpeed)
	assert.Equal(t, 70.0, points[0].Humidity)
	assert.Equal(t, 10.2, points[1].Temperature)
}

func TestOpenWeather_UVIndexAndAirQuality(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "55.75", r.URL.Query().Get("lat"))
		assert.Equal(t, "37.62", r.URL.Query().Get("lon"))
		switch r.URL.Path {
		case "/uvi":
			_, _ = w.Write([]byte(`{"lat":55.75,"lon":37.62,"value":2.35}`))
		case "/air_pollution":
			_, _ = w.Write([]byte(`{"list":[{"main":{"aqi":3}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	at := weather.Coordinates{Lat: 55.75, Lon: 37.62}

	uv, err := p.UVIndex(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, 2.35, uv)

	aqi, err := p.AirQuality(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, weather.AirQualityLevel(3), aqi)
}

func TestOpenWeather_AirQualityEmptyList(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"list":[]}`))
	})
	_, err := p.AirQuality(context.Background(), weather.Coordinates{})
	require.Error(t, err)
}

func TestDoRequest_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	p, _ := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRequest_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"cod":200,"name":"Moscow"}`))
	}))
	defer srv.Close()

	cfg := testHTTPConfig()
	cfg.Backoff.MaxRetries = 3
	p := NewOpenWeatherProvider(cfg, testAPIKey, srv.URL, "ru")

	snap, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.NoError(t, err)
	assert.Equal(t, "Moscow", snap.City)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoRequest_BreakerOpensAfterThreshold(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testHTTPConfig()
	cfg.BreakerThreshold = 2
	p := NewOpenWeatherProvider(cfg, testAPIKey, srv.URL, "ru")

	for i := 0; i < 2; i++ {
		_, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
		require.Error(t, err)
	}
	_, err := p.Current(context.Background(), weather.CityLocation("Moscow"))
	require.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRequest_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testHTTPConfig()
	cfg.BreakerThreshold = 1
	p := NewOpenWeatherProvider(cfg, testAPIKey, srv.URL, "ru")

	for i := 0; i < 3; i++ {
		_, err := p.Current(context.Background(), weather.CityLocation("Nowhere"))
		require.ErrorIs(t, err, weather.ErrLocationNotFound)
	}
}

func TestDoRequest_InvalidConfig(t *testing.T) {
	_, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, newCircuitBreaker("x", 0), "x", nil)
	require.ErrorIs(t, err, errNoHTTPClient)

	cfg := HTTPClientConfig{Client: http.DefaultClient}
	_, err = doRequestWithResilience(context.Background(), cfg, newCircuitBreaker("x", 0), "x", nil)
	require.ErrorIs(t, err, errInvalidConfig)
}
