package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var errUpstream = errors.New("upstream unavailable")

type fakeProvider struct {
	mu sync.Mutex

	current  func(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
	forecast func(ctx context.Context, city string) ([]weather.ForecastPoint, error)
	uv       float64
	uvErr    error
	aqi      weather.AirQualityLevel
	aqiErr   error

	currentCalls  []weather.Location
	forecastCalls []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	p.mu.Lock()
	p.currentCalls = append(p.currentCalls, loc)
	fn := p.current
	p.mu.Unlock()
	if fn == nil {
		return moscow(), nil
	}
	return fn(ctx, loc)
}

func (p *fakeProvider) Forecast(ctx context.Context, city string) ([]weather.ForecastPoint, error) {
	p.mu.Lock()
	p.forecastCalls = append(p.forecastCalls, city)
	fn := p.forecast
	p.mu.Unlock()
	if fn == nil {
		return forecastPoints(3), nil
	}
	return fn(ctx, city)
}

func (p *fakeProvider) UVIndex(context.Context, weather.Coordinates) (float64, error) {
	return p.uv, p.uvErr
}

func (p *fakeProvider) AirQuality(context.Context, weather.Coordinates) (weather.AirQualityLevel, error) {
	return p.aqi, p.aqiErr
}

func (p *fakeProvider) calls() []weather.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]weather.Location(nil), p.currentCalls...)
}

func (p *fakeProvider) forecasts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.forecastCalls...)
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []string
	err     error
	search  func(ctx context.Context, query string) ([]string, error)
	queries []string
}

func (s *fakeSearcher) SearchCities(ctx context.Context, query string) ([]string, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	fn, results, err := s.search, s.results, s.err
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, query)
	}
	return results, err
}

func (s *fakeSearcher) set(results []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results, s.err = results, err
}

func (s *fakeSearcher) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

type fakeGeolocator struct {
	guess weather.GeoGuess
	err   error
}

func (g fakeGeolocator) Locate(context.Context) (weather.GeoGuess, error) {
	return g.guess, g.err
}

type fakeTiles struct{}

func (fakeTiles) BaseTemplate() (string, string) {
	return "https://tiles.test/{z}/{x}/{y}.png", "&copy; OpenStreetMap"
}

func (fakeTiles) OverlayTemplate(kind weather.LayerKind) string {
	return "https://overlay.test/" + string(kind) + "/{z}/{x}/{y}.png?appid=key"
}

func moscow() weather.Snapshot {
	return weather.Snapshot{
		City:        "Moscow",
		Temperature: 15.4,
		FeelsLike:   13.6,
		PressureHPa: 1013,
		Humidity:    72,
		WindSpeed:   3.5,
		Description: "облачно с прояснениями",
		Icon:        "04d",
		Condition:   weather.ConditionCloudy,
		Coordinates: weather.Coordinates{Lat: 55.75, Lon: 37.62},
	}
}

var forecastStart = time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)

func forecastPoints(n int) []weather.ForecastPoint {
	points := make([]weather.ForecastPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, weather.ForecastPoint{
			Time:        forecastStart.Add(time.Duration(i) * 3 * time.Hour),
			Temperature: 15.4 + float64(i),
			WindSpeed:   3.2,
			Humidity:    60,
		})
	}
	return points
}

// gate holds one fake call until the test releases it.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) hold(ctx context.Context) {
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
	}
}

func (g *gate) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(time.Second):
		t.Fatal("call never reached the fake")
	}
}

// releaseOrders covers both arrival orders of two overlapping responses.
var releaseOrders = []struct {
	name       string
	olderFirst bool
}{
	{name: "older response arrives first", olderFirst: true},
	{name: "newer response arrives first", olderFirst: false},
}

// release lets the older and newer calls return in the given order. The
// second is released only after the first has been handled, as reported by
// olderHandled or newerHandled.
func release(t *testing.T, olderFirst bool, older, newer *gate, olderHandled, newerHandled func() bool) {
	t.Helper()
	first, handled, second := older, olderHandled, newer
	if !olderFirst {
		first, handled, second = newer, newerHandled, older
	}
	close(first.release)
	require.Eventually(t, handled, time.Second, 5*time.Millisecond)
	close(second.release)
}

type testEnv struct {
	dash     *Dashboard
	board    *display.Board
	store    *store.MemoryStore
	provider *fakeProvider
	searcher *fakeSearcher
	clock    *clockwork.FakeClock
	metrics  *observability.Metrics
}

func newTestEnv(t *testing.T, provider *fakeProvider, configure ...func(*Options)) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClockAt(forecastStart)
	env := &testEnv{
		board:    display.NewBoard(clock, 0),
		store:    store.NewMemoryStore(),
		provider: provider,
		searcher: &fakeSearcher{},
		clock:    clock,
		metrics:  observability.NewMetricsForTesting(),
	}
	opts := Options{
		Provider: provider,
		Searcher: env.searcher,
		Tiles:    fakeTiles{},
		Sink:     env.board,
		Store:    env.store,
		Clock:    clock,
		Location: time.UTC,
		Metrics:  env.metrics,
	}
	for _, fn := range configure {
		fn(&opts)
	}

	dash, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(dash.Close)
	env.dash = dash
	return env
}
