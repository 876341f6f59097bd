package providers

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultBaseMapTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultOpenWeatherTileURL = "https://tile.openweathermap.org/map"

	baseMapAttribution = "&copy; OpenStreetMap"
)

// Tiles implements weather.TileSource for OpenStreetMap base tiles and
// OpenWeatherMap overlays.
type Tiles struct {
	baseMapURL string
	overlayURL string
	apiKey     string
}

func NewTiles(baseMapURL, overlayURL, apiKey string) *Tiles {
	if baseMapURL == "" {
		baseMapURL = DefaultBaseMapTileURL
	}
	if overlayURL == "" {
		overlayURL = DefaultOpenWeatherTileURL
	}
	return &Tiles{
		baseMapURL: baseMapURL,
		overlayURL: strings.TrimRight(overlayURL, "/"),
		apiKey:     apiKey,
	}
}

func (t *Tiles) BaseTemplate() (string, string) {
	return t.baseMapURL, baseMapAttribution
}

// OverlayTemplate returns the {z}/{x}/{y} template for kind, or an empty
// string for an unknown kind.
func (t *Tiles) OverlayTemplate(kind weather.LayerKind) string {
	var layer string
	switch kind {
	case weather.LayerPrecipitation:
		layer = "precipitation_new"
	case weather.LayerTemperature:
		layer = "temp_new"
	case weather.LayerWind:
		layer = "wind_new"
	default:
		return ""
	}
	return fmt.Sprintf("%s/%s/{z}/{x}/{y}.png?appid=%s", t.overlayURL, layer, t.apiKey)
}
