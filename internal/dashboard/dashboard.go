// Package dashboard holds the controllers behind the weather page and the
// Dashboard that wires them together. Controllers never talk to the network
// or the page directly: data comes through weather.Provider and friends,
// output goes to a display.Sink.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Options configures a Dashboard. Provider, Searcher, Tiles, Sink and Store
// are required.
type Options struct {
	Provider   weather.Provider
	Searcher   weather.CitySearcher
	Geolocator weather.Geolocator
	Tiles      weather.TileSource
	Sink       display.Sink
	Store      SnapshotStore

	Clock      clockwork.Clock
	Vocabulary weather.Vocabulary
	Location   *time.Location

	ForecastPoints  int
	Map             MapConfig
	SuggestDebounce time.Duration
	PointerDebounce time.Duration

	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Dashboard is the entry point for user events. Every event method returns
// immediately; the work runs in the background.
type Dashboard struct {
	tasks *Group
	store SnapshotStore

	coordinator *Coordinator
	forecast    *ForecastRenderer
	chart       *ChartPresenter
	maps        *MapOverlay
	suggester   *CitySuggester
	clock       *ClockPresenter
	locator     *LocationResolver

	suggestDebounce *Debouncer
	pointerDebounce *Debouncer
}

func New(ctx context.Context, opts Options) (*Dashboard, error) {
	switch {
	case opts.Provider == nil:
		return nil, errors.New("dashboard: provider is required")
	case opts.Searcher == nil:
		return nil, errors.New("dashboard: city searcher is required")
	case opts.Tiles == nil:
		return nil, errors.New("dashboard: tile source is required")
	case opts.Sink == nil:
		return nil, errors.New("dashboard: sink is required")
	case opts.Store == nil:
		return nil, errors.New("dashboard: store is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Vocabulary.CityHeading == "" {
		opts.Vocabulary = weather.Russian()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Map.Zoom == 0 && opts.Map.Center == (weather.Coordinates{}) {
		policy := opts.Map.Policy
		opts.Map = DefaultMapConfig()
		if policy != "" {
			opts.Map.Policy = policy
		}
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	logger := opts.Logger

	d := &Dashboard{
		tasks:           NewGroup(ctx, logger),
		store:           opts.Store,
		suggestDebounce: NewDebouncer(opts.Clock, opts.SuggestDebounce),
		pointerDebounce: NewDebouncer(opts.Clock, opts.PointerDebounce),
	}
	d.chart = NewChartPresenter(opts.Sink, opts.Vocabulary.ChartLabel, opts.Metrics)
	d.forecast = NewForecastRenderer(
		opts.Provider, opts.Sink, d.chart, opts.Vocabulary, opts.Location,
		opts.ForecastPoints, opts.Metrics, logger.With("component", "forecast"),
	)
	d.coordinator = NewCoordinator(CoordinatorDeps{
		Provider: opts.Provider,
		Sink:     opts.Sink,
		Forecast: d.forecast,
		Store:    opts.Store,
		Spawner:  d.tasks,
		Vocab:    opts.Vocabulary,
		Metrics:  opts.Metrics,
		Logger:   logger.With("component", "coordinator"),
	})
	// The popup reads point weather through the coordinator's fetcher.
	d.maps = NewMapOverlay(
		opts.Sink, opts.Tiles, d.coordinator, opts.Vocabulary, opts.Map,
		opts.Metrics, logger.With("component", "map"),
	)
	d.coordinator.maps = d.maps
	d.suggester = NewCitySuggester(opts.Searcher, opts.Sink, opts.Metrics, logger.With("component", "suggester"))
	d.clock = NewClockPresenter(opts.Sink, opts.Clock, opts.Location)
	if opts.Geolocator != nil {
		d.locator = NewLocationResolver(opts.Geolocator, opts.Sink, d.coordinator, logger.With("component", "locator"))
	}
	return d, nil
}

// Search renders the weather for city. Like every event method it issues
// its request id before returning, so a later event always supersedes an
// earlier one no matter which goroutine runs first.
func (d *Dashboard) Search(city string) {
	d.tasks.Go("weather", d.coordinator.request(weather.CityLocation(city)))
}

// SearchCoordinates renders the weather at lat, lon.
func (d *Dashboard) SearchCoordinates(lat, lon float64) {
	d.tasks.Go("weather", d.coordinator.request(weather.PointLocation(lat, lon)))
}

// Type handles one keystroke in the city input.
func (d *Dashboard) Type(partial string) {
	d.suggestDebounce.Trigger(func() {
		d.tasks.Go("suggest", d.suggester.request(partial))
	})
}

// Hover handles pointer movement over the map.
func (d *Dashboard) Hover(lat, lon float64) {
	d.pointerDebounce.Trigger(func() {
		d.tasks.Go("pointer", d.maps.pointRequest(weather.MapPoint{Lat: lat, Lon: lon}))
	})
}

// Bootstrap renders the IP-geolocated city. It reports false when no
// geolocator is configured.
func (d *Dashboard) Bootstrap() bool {
	if d.locator == nil {
		return false
	}
	d.tasks.Go("bootstrap", d.locator.Bootstrap)
	return true
}

// Refresh re-renders whatever produced the current snapshot. It reports
// false when nothing has been shown yet.
func (d *Dashboard) Refresh() bool {
	query, err := d.store.LastQuery()
	if err != nil {
		return false
	}
	d.tasks.Go("refresh", d.coordinator.request(query))
	return true
}

// Tick advances the on-screen clock.
func (d *Dashboard) Tick() {
	d.clock.Tick()
}

// Current returns the snapshot on screen.
func (d *Dashboard) Current() (weather.Snapshot, error) {
	return d.store.Current()
}

// MapView returns the map state.
func (d *Dashboard) MapView() display.MapView {
	return d.maps.View()
}

// LiveCharts returns how many chart instances exist.
func (d *Dashboard) LiveCharts() int {
	return d.chart.Live()
}

// Wait blocks until all background work started so far has finished.
// Debounced events that have not fired yet are not waited for.
func (d *Dashboard) Wait() {
	d.tasks.Wait()
}

// Close drops pending debounced events, cancels in-flight requests and
// waits for them to return.
func (d *Dashboard) Close() {
	d.suggestDebounce.Stop()
	d.pointerDebounce.Stop()
	d.tasks.Close()
}
