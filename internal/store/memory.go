// internal/store/memory.go
//
// In-memory registry of live game sessions.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Map access is guarded by an RWMutex; each session has its own mutex so
//     that at most one operation runs against a session at a time while
//     different sessions proceed in parallel.
//   - State is lost when the process restarts (games are never persisted).
//   - Sessions idle for longer than a TTL can be swept.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/cwsimon/internal/game"
)

var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for game sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// View returns a snapshot of the session.
	View(ctx context.Context, id string) (game.Snapshot, error)

	// Update runs fn with exclusive access to the session.
	// Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	Delete(ctx context.Context, id string) error
}

type entry struct {
	mu       sync.Mutex
	session  *game.Session
	lastUsed time.Time
}

// Memory is the map-based Store implementation.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *Memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = &entry{session: s, lastUsed: m.now()}
	return nil
}

func (m *Memory) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) View(ctx context.Context, id string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := m.Update(ctx, id, func(s *game.Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = m.now()
	return fn(e.session)
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len is the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions unused for at least ttl and returns how many went.
func (m *Memory) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		stale := !e.lastUsed.After(cutoff)
		e.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval, ttl time.Duration, onSweep func(n int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(ttl); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
