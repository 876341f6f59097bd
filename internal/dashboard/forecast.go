package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultForecastPoints is how many forecast entries are shown.
const DefaultForecastPoints = 5

// ForecastRenderer fills the forecast table and feeds the temperature chart.
type ForecastRenderer struct {
	provider weather.Provider
	sink     display.Sink
	chart    ChartUpdater
	vocab    weather.Vocabulary
	tz       *time.Location
	limit    int
	slot     *slot
	logger   *slog.Logger
}

func NewForecastRenderer(
	provider weather.Provider,
	sink display.Sink,
	chart ChartUpdater,
	vocab weather.Vocabulary,
	tz *time.Location,
	limit int,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *ForecastRenderer {
	if limit <= 0 {
		limit = DefaultForecastPoints
	}
	if tz == nil {
		tz = time.Local
	}
	return &ForecastRenderer{
		provider: provider,
		sink:     sink,
		chart:    chart,
		vocab:    vocab,
		tz:       tz,
		limit:    limit,
		slot:     newSlot("forecast", metrics),
		logger:   logger,
	}
}

// Render fetches the forecast for city and shows its first entries in
// provider order. On failure the table is left as it was.
func (f *ForecastRenderer) Render(ctx context.Context, city string) {
	f.Request(city)(ctx)
}

// Request issues a forecast request id now and returns the work that
// fetches and renders it. Of several outstanding requests only the one
// issued last may touch the table.
func (f *ForecastRenderer) Request(city string) func(ctx context.Context) {
	id := f.slot.next()
	return func(ctx context.Context) {
		f.render(ctx, id, city)
	}
}

func (f *ForecastRenderer) render(ctx context.Context, id uint64, city string) {
	points, err := f.provider.Forecast(ctx, city)
	if err != nil {
		f.logger.Error("forecast fetch failed", "city", city, "error", err)
		return
	}
	points = weather.Head(points, f.limit)

	applied := f.slot.ifLatest(id, func() {
		f.sink.ClearRows(display.RegionForecastBody)
		for _, p := range points {
			f.sink.AppendRow(display.RegionForecastBody, f.row(p))
		}
		series := weather.BuildSeries(points, f.tz)
		f.chart.Update(series.Labels, series.Values)
	})
	if !applied {
		f.logger.Debug("stale forecast discarded", "city", city)
	}
}

func (f *ForecastRenderer) row(p weather.ForecastPoint) []string {
	return []string{
		weather.TimeLabel(p.Time, f.tz),
		fmt.Sprintf("%d%s", weather.Round(p.Temperature), f.vocab.TemperatureUnit),
		fmt.Sprintf("%d %s", weather.Round(p.WindSpeed), f.vocab.WindUnit),
		strconv.FormatFloat(p.Humidity, 'f', -1, 64) + "%",
	}
}
