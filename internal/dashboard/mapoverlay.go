package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// LayerPolicy decides what RefreshWeatherLayers does with overlays that are
// already on the map.
type LayerPolicy string

const (
	// LayerPolicyReplace removes the previous overlay set before adding the
	// new one, so the map carries at most one set.
	LayerPolicyReplace LayerPolicy = "replace"
	// LayerPolicyAccumulate appends a new set on every refresh and never
	// removes anything.
	LayerPolicyAccumulate LayerPolicy = "accumulate"
)

// ParseLayerPolicy validates s. The empty string selects LayerPolicyReplace.
func ParseLayerPolicy(s string) (LayerPolicy, error) {
	switch LayerPolicy(s) {
	case "", LayerPolicyReplace:
		return LayerPolicyReplace, nil
	case LayerPolicyAccumulate:
		return LayerPolicyAccumulate, nil
	}
	return "", fmt.Errorf("unknown map layer policy %q", s)
}

// MapConfig is the initial state of the map.
type MapConfig struct {
	Center weather.Coordinates
	Zoom   int
	Policy LayerPolicy
}

// DefaultMapConfig centers on Moscow.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Center: weather.Coordinates{Lat: 55.76, Lon: 37.64},
		Zoom:   10,
		Policy: LayerPolicyReplace,
	}
}

type overlaySpec struct {
	kind    weather.LayerKind
	opacity float64
}

var weatherOverlays = []overlaySpec{
	{kind: weather.LayerPrecipitation, opacity: 0.7},
	{kind: weather.LayerTemperature, opacity: 0.5},
	{kind: weather.LayerWind, opacity: 0.5},
}

// MapOverlay owns the single map instance: its view, its weather overlays
// and the point-weather popup.
type MapOverlay struct {
	sink    display.Sink
	tiles   weather.TileSource
	source  PointWeatherSource
	vocab   weather.Vocabulary
	cfg     MapConfig
	metrics *observability.Metrics
	logger  *slog.Logger
	pointer *slot

	mu   sync.Mutex
	view display.MapView
}

func NewMapOverlay(
	sink display.Sink,
	tiles weather.TileSource,
	source PointWeatherSource,
	vocab weather.Vocabulary,
	cfg MapConfig,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *MapOverlay {
	if cfg.Policy == "" {
		cfg.Policy = LayerPolicyReplace
	}
	if cfg.Zoom <= 0 {
		cfg.Zoom = DefaultMapConfig().Zoom
	}
	baseURL, attribution := tiles.BaseTemplate()
	m := &MapOverlay{
		sink:    sink,
		tiles:   tiles,
		source:  source,
		vocab:   vocab,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		pointer: newSlot("pointer", metrics),
		view: display.MapView{
			Center: latLng(cfg.Center.Lat, cfg.Center.Lon),
			Zoom:   cfg.Zoom,
			Base: display.TileLayer{
				ID:          "base",
				Name:        "base",
				URL:         baseURL,
				Opacity:     1,
				Attribution: attribution,
			},
		},
	}
	m.publish()
	return m
}

// Center moves the existing view to lat, lon at the configured zoom.
func (m *MapOverlay) Center(lat, lon float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view.Center = latLng(lat, lon)
	m.view.Zoom = m.cfg.Zoom
	m.publish()
}

// RefreshWeatherLayers adds the precipitation, temperature and wind
// overlays. The tiles are global, so lat and lon only matter for logging.
func (m *MapOverlay) RefreshWeatherLayers(lat, lon float64) {
	layers := make([]display.TileLayer, 0, len(weatherOverlays))
	for _, o := range weatherOverlays {
		layers = append(layers, display.TileLayer{
			ID:      uuid.NewString(),
			Name:    string(o.kind),
			URL:     m.tiles.OverlayTemplate(o.kind),
			Opacity: o.opacity,
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.cfg.Policy {
	case LayerPolicyAccumulate:
		m.view.Layers = append(m.view.Layers, layers...)
	default:
		m.view.Layers = layers
	}
	if m.metrics != nil {
		m.metrics.OverlayLayers.Set(float64(len(m.view.Layers)))
	}
	m.logger.Debug("weather layers refreshed",
		"lat", lat, "lon", lon, "policy", m.cfg.Policy, "layers", len(m.view.Layers))
	m.publish()
}

// ShowPointWeather fetches the weather at lat, lon and opens a popup there.
// Errors are logged only; a response overtaken by a newer pointer request
// is dropped.
func (m *MapOverlay) ShowPointWeather(ctx context.Context, lat, lon float64) {
	m.pointRequest(weather.MapPoint{Lat: lat, Lon: lon})(ctx)
}

// pointRequest issues the pointer request id for at when the pointer moves.
func (m *MapOverlay) pointRequest(at weather.MapPoint) func(ctx context.Context) {
	id := m.pointer.next()
	return func(ctx context.Context) {
		snap, err := m.source.FetchByCoordinates(ctx, at.Lat, at.Lon)
		if err != nil {
			m.logger.Error("point weather fetch failed", "lat", at.Lat, "lon", at.Lon, "error", err)
			return
		}

		popup := &display.Popup{
			At: latLng(at.Lat, at.Lon),
			Lines: []string{
				fmt.Sprintf("%s: %d%s", m.vocab.PopupTemperature, weather.Round(snap.Temperature), m.vocab.TemperatureUnit),
				fmt.Sprintf("%s: %d %s", m.vocab.PopupWind, weather.Round(snap.WindSpeed), m.vocab.WindUnit),
				fmt.Sprintf("%s: %s", m.vocab.PopupCondition, m.vocab.ConditionLabel(snap.Condition, snap.Description)),
			},
		}
		m.pointer.ifLatest(id, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.view.Popup = popup
			m.publish()
		})
	}
}

// View returns a copy of the current map state.
func (m *MapOverlay) View() display.MapView {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.view
	v.Layers = slices.Clone(m.view.Layers)
	return v
}

// OverlayCount returns how many weather overlays are on the map.
func (m *MapOverlay) OverlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.view.Layers)
}

// publish must be called with m.mu held.
func (m *MapOverlay) publish() {
	v := m.view
	v.Layers = slices.Clone(m.view.Layers)
	m.sink.SetMap(display.RegionMap, v)
}

func latLng(lat, lon float64) display.LatLng {
	return display.LatLng{Lat: lat, Lng: lon}
}
