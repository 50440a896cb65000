// internal/store/memory.go
//
// In-memory registry of server-hosted play sessions.
// Each visitor (identified by a cookie value) owns at most one *game.Session.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sessions idle longer than the TTL are evicted by Sweep.
//   - State is lost when the process restarts.
//   - Errors are returned for unknown visitor IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/idioms/apps/go-server/internal/game"
)

// ErrNotFound is returned by Get for unknown or evicted sessions.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for play sessions.
type Store interface {
	// Save binds s to visitorID, replacing any previous session.
	Save(ctx context.Context, visitorID string, s *game.Session) error

	// Get retrieves the visitor's session.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, visitorID string) (*game.Session, error)

	// Sweep evicts sessions idle since before cutoff and reports how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) int

	// Len reports the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions map
	sessions map[string]*game.Session // keyed by visitor ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

// Save adds or replaces the visitor's session.
func (m *memory) Save(ctx context.Context, visitorID string, s *game.Session) error {
	if visitorID == "" {
		return errors.New("visitor id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[visitorID] = s
	return nil
}

// Get looks up a session by visitor ID.
func (m *memory) Get(ctx context.Context, visitorID string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[visitorID]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Sweep removes sessions whose last activity is before cutoff.
// Sessions with a request in flight are kept regardless of age.
func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		snap := s.Snapshot()
		if snap.InFlight || !snap.Touched.Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	return removed
}

// Len reports the number of stored sessions.
func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunSweeper evicts idle sessions every interval until ctx is done.
func RunSweeper(ctx context.Context, st Store, ttl, interval time.Duration, onSweep func(removed int)) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n := st.Sweep(ctx, now.Add(-ttl))
			if onSweep != nil && n > 0 {
				onSweep(n)
			}
		}
	}
}
