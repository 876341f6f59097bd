package dashboard

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/i474232898/weather-dashboard/internal/observability"
)

// slot hands out monotonically increasing request ids for one kind of
// request and decides whether a response may still be applied. Responses
// arrive in network order, not issue order; only the latest issued id (or,
// for follow-up requests, the id currently on screen) gets through.
type slot struct {
	name    string
	latest  *atomic.Uint64
	metrics *observability.Metrics

	mu    sync.Mutex
	shown uint64
}

func newSlot(name string, metrics *observability.Metrics) *slot {
	return &slot{name: name, latest: atomic.NewUint64(0), metrics: metrics}
}

// next issues a new request id.
func (s *slot) next() uint64 {
	return s.latest.Inc()
}

// ifLatest runs fn if id is still the latest issued id.
func (s *slot) ifLatest(id uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest.Load() != id {
		s.discard()
		return false
	}
	fn()
	return true
}

// publish is ifLatest that also records id as the one on screen.
func (s *slot) publish(id uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest.Load() != id {
		s.discard()
		return false
	}
	s.shown = id
	fn()
	return true
}

// ifShown runs fn if id is the published id, even if newer requests have
// been issued since (and failed or are still in flight).
func (s *slot) ifShown(id uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown != id {
		s.discard()
		return false
	}
	fn()
	return true
}

func (s *slot) discard() {
	if s.metrics != nil {
		s.metrics.StaleResponses.WithLabelValues(s.name).Inc()
	}
}
