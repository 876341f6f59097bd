package weather

import (
	"context"
	"strconv"
)

// Provider abstracts the weather data source (OpenWeatherMap).
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (Snapshot, error)
	Forecast(ctx context.Context, city string) ([]ForecastPoint, error)
	UVIndex(ctx context.Context, at Coordinates) (float64, error)
	AirQuality(ctx context.Context, at Coordinates) (AirQualityLevel, error)
}

// CitySearcher returns display names of cities matching a partial query.
type CitySearcher interface {
	SearchCities(ctx context.Context, query string) ([]string, error)
}

// GeoGuess is an approximate location derived from the caller's IP address.
type GeoGuess struct {
	City        string
	Coordinates *Coordinates
}

// Geolocator supplies an initial location guess at startup.
type Geolocator interface {
	Locate(ctx context.Context) (GeoGuess, error)
}

// LayerKind names one of the weather overlays drawn on the map.
type LayerKind string

const (
	LayerPrecipitation LayerKind = "precipitation"
	LayerTemperature   LayerKind = "temperature"
	LayerWind          LayerKind = "wind"
)

// TileSource supplies {z}/{x}/{y} URL templates for the base map and the
// weather overlays.
type TileSource interface {
	BaseTemplate() (url, attribution string)
	OverlayTemplate(kind LayerKind) string
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
