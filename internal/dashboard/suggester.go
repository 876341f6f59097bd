package dashboard

import (
	"context"
	"log/slog"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// CitySuggester keeps the autocomplete list in sync with what the user types.
type CitySuggester struct {
	searcher weather.CitySearcher
	sink     display.Sink
	logger   *slog.Logger
	slot     *slot
}

func NewCitySuggester(searcher weather.CitySearcher, sink display.Sink, metrics *observability.Metrics, logger *slog.Logger) *CitySuggester {
	return &CitySuggester{
		searcher: searcher,
		sink:     sink,
		logger:   logger,
		slot:     newSlot("suggestions", metrics),
	}
}

// Suggest replaces the option list with the cities matching partial. The
// query is passed through as typed, even when empty.
func (s *CitySuggester) Suggest(ctx context.Context, partial string) {
	s.request(partial)(ctx)
}

// request issues the suggestion request id at keystroke time.
func (s *CitySuggester) request(partial string) func(ctx context.Context) {
	id := s.slot.next()
	return func(ctx context.Context) {
		names, err := s.searcher.SearchCities(ctx, partial)
		if err != nil {
			s.logger.Error("city suggestions failed", "query", partial, "error", err)
			return
		}
		s.slot.ifLatest(id, func() {
			s.sink.SetOptions(display.RegionCitySuggestions, names)
		})
	}
}
