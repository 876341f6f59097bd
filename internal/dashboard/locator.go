package dashboard

import (
	"context"
	"log/slog"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Renderer is what the location resolver hands its guess to.
type Renderer interface {
	FetchAndRender(ctx context.Context, city string)
	FetchAndRenderCoordinates(ctx context.Context, lat, lon float64)
}

// LocationResolver seeds the dashboard with an IP-based location guess.
type LocationResolver struct {
	geo      weather.Geolocator
	sink     display.Sink
	renderer Renderer
	logger   *slog.Logger
}

func NewLocationResolver(geo weather.Geolocator, sink display.Sink, renderer Renderer, logger *slog.Logger) *LocationResolver {
	return &LocationResolver{geo: geo, sink: sink, renderer: renderer, logger: logger}
}

// Bootstrap guesses the user's city, puts it in the search box and renders
// it. A guess without a city falls back to its coordinates.
func (r *LocationResolver) Bootstrap(ctx context.Context) {
	guess, err := r.geo.Locate(ctx)
	if err != nil {
		r.logger.Error("geolocation failed", "error", err)
		return
	}

	switch {
	case guess.City != "":
		r.sink.SetText(display.RegionCityInput, guess.City)
		r.renderer.FetchAndRender(ctx, guess.City)
	case guess.Coordinates != nil:
		r.renderer.FetchAndRenderCoordinates(ctx, guess.Coordinates.Lat, guess.Coordinates.Lon)
	default:
		r.logger.Warn("geolocation returned no usable location")
	}
}
