package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

// MapController is the part of the map the coordinator drives.
type MapController interface {
	Center(lat, lon float64)
	RefreshWeatherLayers(lat, lon float64)
}

// ForecastController renders the forecast for a city. Request issues the
// forecast request id immediately and returns the work that fetches and
// renders it, so ids follow the order of the calls to Request.
type ForecastController interface {
	Request(city string) func(ctx context.Context)
}

// SnapshotStore keeps the snapshot currently on screen.
type SnapshotStore interface {
	Save(generation uint64, query weather.Location, snapshot weather.Snapshot) bool
	Current() (weather.Snapshot, error)
	LastQuery() (weather.Location, error)
}

// cardRegions are hidden until the first snapshot is shown.
var cardRegions = []display.Region{
	display.RegionWeatherCard,
	display.RegionForecastTable,
	display.RegionMapContainer,
	display.RegionClockContainer,
}

// Coordinator turns one location query into one consistent snapshot on
// screen, then fans out to the forecast, the map, UV and air quality.
type Coordinator struct {
	fetcher  *Fetcher
	provider weather.Provider
	sink     display.Sink
	forecast ForecastController
	maps     MapController
	store    SnapshotStore
	spawner  Spawner
	vocab    weather.Vocabulary
	metrics  *observability.Metrics
	logger   *slog.Logger
	primary  *slot
}

// CoordinatorDeps are the coordinator's collaborators.
type CoordinatorDeps struct {
	Provider weather.Provider
	Sink     display.Sink
	Forecast ForecastController
	Map      MapController
	Store    SnapshotStore
	Spawner  Spawner
	Vocab    weather.Vocabulary
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	return &Coordinator{
		fetcher:  NewFetcher(deps.Provider),
		provider: deps.Provider,
		sink:     deps.Sink,
		forecast: deps.Forecast,
		maps:     deps.Map,
		store:    deps.Store,
		spawner:  deps.Spawner,
		vocab:    deps.Vocab,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		primary:  newSlot("weather", deps.Metrics),
	}
}

// FetchAndRender looks up the current weather for city and renders it.
func (c *Coordinator) FetchAndRender(ctx context.Context, city string) {
	c.RenderLocation(ctx, weather.CityLocation(city))
}

// FetchAndRenderCoordinates is FetchAndRender keyed by coordinates.
func (c *Coordinator) FetchAndRenderCoordinates(ctx context.Context, lat, lon float64) {
	c.RenderLocation(ctx, weather.PointLocation(lat, lon))
}

// FetchByCoordinates fetches the weather at lat, lon without rendering it.
func (c *Coordinator) FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.Snapshot, error) {
	return c.fetcher.FetchByCoordinates(ctx, lat, lon)
}

// RenderLocation fetches and renders loc. Only the most recently issued
// request may change the screen; older responses are dropped whether they
// succeed or fail.
func (c *Coordinator) RenderLocation(ctx context.Context, loc weather.Location) {
	c.request(loc)(ctx)
}

// request issues the request id for loc now and returns the fetch. Event
// handlers call it before spawning so ids follow event order, not goroutine
// scheduling order.
func (c *Coordinator) request(loc weather.Location) func(ctx context.Context) {
	id := c.primary.next()
	return func(ctx context.Context) {
		c.render(ctx, id, loc)
	}
}

func (c *Coordinator) render(ctx context.Context, id uint64, loc weather.Location) {
	snap, err := c.fetcher.fetch(ctx, loc)
	if err != nil {
		c.fail(ctx, id, loc, err)
		return
	}

	var forecast func(ctx context.Context)
	applied := c.primary.publish(id, func() {
		c.show(snap)
		c.store.Save(id, loc, snap)
		forecast = c.updateMap(loc, snap)
	})
	if !applied {
		c.logger.Debug("stale weather response discarded", "location", loc.Key())
		return
	}
	c.logger.Info("weather rendered", "location", loc.Key(), "city", snap.City)
	c.fanOut(id, snap, forecast)
}

func (c *Coordinator) fail(ctx context.Context, id uint64, loc weather.Location, err error) {
	if ctx.Err() != nil {
		c.logger.Debug("weather request abandoned", "location", loc.Key(), "error", err)
		return
	}
	c.primary.ifLatest(id, func() {
		if errors.Is(err, weather.ErrLocationNotFound) {
			c.logger.Info("location not found", "location", loc.Key())
			c.alert(c.vocab.CityNotFound)
			return
		}
		c.logger.Error("weather fetch failed", "location", loc.Key(), "error", err)
		c.alert(c.vocab.FetchFailed)
	})
}

func (c *Coordinator) show(s weather.Snapshot) {
	for _, r := range cardRegions {
		c.sink.SetVisible(r, true)
	}
	c.sink.SetText(display.RegionCityName, c.vocab.Heading(s.City))
	c.sink.SetText(display.RegionTemperature, strconv.Itoa(weather.Round(s.Temperature)))
	c.sink.SetText(display.RegionFeelsLike, strconv.Itoa(weather.Round(s.FeelsLike)))
	c.sink.SetText(display.RegionPressure, strconv.Itoa(s.PressureMmHg()))
	c.sink.SetText(display.RegionHumidity, strconv.FormatFloat(s.Humidity, 'f', -1, 64))
	c.sink.SetText(display.RegionWindSpeed, strconv.Itoa(weather.Round(s.WindSpeed)))
	c.sink.SetText(display.RegionDescription, s.Description)
	c.sink.SetImage(display.RegionWeatherIcon, fmt.Sprintf(iconURLFormat, s.Icon))
}

// updateMap moves the map to a snapshot that just made it on screen and
// issues its forecast request. It runs inside publish, so a newer snapshot
// always issues the newer forecast id. The forecast is keyed by what the
// user typed, like the snapshot request.
func (c *Coordinator) updateMap(loc weather.Location, s weather.Snapshot) func(ctx context.Context) {
	city := loc.City
	if city == "" {
		city = s.City
	}
	c.maps.Center(s.Coordinates.Lat, s.Coordinates.Lon)
	c.maps.RefreshWeatherLayers(s.Coordinates.Lat, s.Coordinates.Lon)
	return c.forecast.Request(city)
}

// fanOut starts the follow-up fetches for a published snapshot.
func (c *Coordinator) fanOut(id uint64, s weather.Snapshot, forecast func(ctx context.Context)) {
	at := s.Coordinates

	c.spawner.Go("forecast", forecast)
	c.spawner.Go("uv-index", func(ctx context.Context) {
		c.showUVIndex(ctx, id, at)
	})
	c.spawner.Go("air-quality", func(ctx context.Context) {
		c.showAirQuality(ctx, id, at)
	})
}

func (c *Coordinator) showUVIndex(ctx context.Context, id uint64, at weather.Coordinates) {
	uv, err := c.provider.UVIndex(ctx, at)
	if err != nil {
		c.logger.Error("uv index fetch failed", "lat", at.Lat, "lon", at.Lon, "error", err)
		return
	}
	c.primary.ifShown(id, func() {
		c.sink.SetText(display.RegionUVIndex, strconv.FormatFloat(uv, 'f', -1, 64))
	})
}

func (c *Coordinator) showAirQuality(ctx context.Context, id uint64, at weather.Coordinates) {
	level, err := c.provider.AirQuality(ctx, at)
	if err != nil {
		c.logger.Error("air quality fetch failed", "lat", at.Lat, "lon", at.Lon, "error", err)
		return
	}
	c.primary.ifShown(id, func() {
		c.sink.SetText(display.RegionAirQuality, c.vocab.AirQualityLabel(level))
	})
}

func (c *Coordinator) alert(msg string) {
	if c.metrics != nil {
		c.metrics.Alerts.Inc()
	}
	c.sink.Alert(msg)
}
