package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/writ/pkg/domain"
)

type entry struct {
	state   *domain.State
	expires time.Time // zero when the session never expires
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Store keeps sessions in a map guarded by a RWMutex. States are cloned on
// the way in and on the way out.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL expires sessions ttl after their last save. Zero keeps them forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{sessions: make(map[string]entry), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Save(_ context.Context, sessionID string, state *domain.State) error {
	e := entry{state: state.Clone()}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.sessions[sessionID] = e
	s.mu.Unlock()
	return nil
}

// Load returns domain.ErrSessionNotFound for unknown and expired sessions.
// Expired entries are evicted lazily.
func (s *Store) Load(_ context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if e.expired(s.now()) {
		s.evict(sessionID, e)
		return nil, domain.ErrSessionNotFound
	}
	return e.state.Clone(), nil
}

func (s *Store) evict(sessionID string, seen entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent Save may have replaced the entry.
	if cur, ok := s.sessions[sessionID]; ok && cur.state == seen.state {
		delete(s.sessions, sessionID)
	}
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// List returns the live session ids, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	now := s.now()
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id, e := range s.sessions {
		if !e.expired(now) {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids, nil
}
