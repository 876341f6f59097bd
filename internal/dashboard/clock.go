package dashboard

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-dashboard/internal/display"
)

// ClockPresenter writes the wall-clock time. It has no state of its own.
type ClockPresenter struct {
	sink  display.Sink
	clock clockwork.Clock
	tz    *time.Location
}

func NewClockPresenter(sink display.Sink, clock clockwork.Clock, tz *time.Location) *ClockPresenter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if tz == nil {
		tz = time.Local
	}
	return &ClockPresenter{sink: sink, clock: clock, tz: tz}
}

// Tick writes HH:MM:SS.
func (p *ClockPresenter) Tick() {
	p.sink.SetText(display.RegionClock, p.clock.Now().In(p.tz).Format("15:04:05"))
}
