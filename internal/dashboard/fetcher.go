package dashboard

import (
	"context"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// PointWeatherSource fetches current conditions at a coordinate pair without
// rendering anything.
type PointWeatherSource interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.Snapshot, error)
}

// Fetcher is the data side of the coordinator. It talks to the provider and
// never touches the display, so the map popup can share it.
type Fetcher struct {
	provider weather.Provider
}

func NewFetcher(provider weather.Provider) *Fetcher {
	return &Fetcher{provider: provider}
}

func (f *Fetcher) FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.Snapshot, error) {
	return f.provider.Current(ctx, weather.PointLocation(lat, lon))
}

func (f *Fetcher) fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	return f.provider.Current(ctx, loc)
}
