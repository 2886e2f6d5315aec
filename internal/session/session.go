// Package session keeps each operator's accumulated record table in memory.
package session

import (
	"context"
	"sync"
	"time"

	"actas/internal/model"
)

type entry struct {
	records  model.Collection
	lastSeen time.Time
}

// Store maps session IDs to their record collections. It is safe for
// concurrent use; each collection is replaced, never mutated in place.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry), now: time.Now}
}

// Get returns the session's collection (nil when unknown).
func (s *Store) Get(id string) model.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	e.lastSeen = s.now()
	return e.records
}

// Update replaces the session's collection with fn(current) and returns it.
func (s *Store) Update(id string, fn func(model.Collection) model.Collection) model.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	e.records = fn(e.records)
	e.lastSeen = s.now()
	return e.records
}

// Append adds recs to the end of the session's collection.
func (s *Store) Append(id string, recs ...model.Record) model.Collection {
	return s.Update(id, func(c model.Collection) model.Collection { return c.Append(recs...) })
}

// Clear replaces the session's collection with an empty one.
func (s *Store) Clear(id string) {
	s.Update(id, func(model.Collection) model.Collection { return model.Collection{} })
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	n := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (s *Store) Janitor(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ttl)
		}
	}
}
