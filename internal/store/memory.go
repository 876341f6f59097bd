package store

import (
	"errors"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned before any snapshot has been applied.
	ErrNotFound = errors.New("no current weather snapshot")
)

// MemoryStore holds the one "current" weather snapshot. It keeps no history:
// each Save replaces what was there.
type MemoryStore struct {
	mu sync.RWMutex

	current    weather.Snapshot
	has        bool
	query      weather.Location // what the user asked for, for refreshes
	generation uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save makes snapshot current if generation is not older than the one already
// held. It reports whether the snapshot was applied.
func (s *MemoryStore) Save(generation uint64, query weather.Location, snapshot weather.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.has && generation < s.generation {
		return false
	}
	s.current = snapshot
	s.query = query
	s.generation = generation
	s.has = true
	return true
}

// Current returns the current snapshot.
func (s *MemoryStore) Current() (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.has {
		return weather.Snapshot{}, ErrNotFound
	}
	return s.current, nil
}

// LastQuery returns the location that produced the current snapshot.
func (s *MemoryStore) LastQuery() (weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.has {
		return weather.Location{}, ErrNotFound
	}
	return s.query, nil
}
