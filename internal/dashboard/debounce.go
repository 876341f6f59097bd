package dashboard

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer coalesces bursts of events into one trailing call. With a zero
// delay it calls straight through, one call per event.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu    sync.Mutex
	timer clockwork.Timer
}

func NewDebouncer(clock clockwork.Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger schedules fn, cancelling whatever an earlier Trigger scheduled and
// has not run yet.
func (d *Debouncer) Trigger(fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, fn)
}

// Stop drops any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
