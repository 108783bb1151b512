package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory session store with TTL expiry.
// Suitable for single-node deployments; distributed deployments should use
// the Redis-backed store instead.
type MemoryStore struct {
	sessions map[string]*State
	mu       sync.RWMutex

	maxAge        time.Duration
	sweepInterval time.Duration

	stopSweep chan struct{}
	closeOnce sync.Once
}

// MemoryStoreOption is a functional option for configuring MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMaxAge sets the idle TTL after which a session expires.
func WithMaxAge(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.maxAge = d
	}
}

// WithSweepInterval sets how often expired sessions are swept out.
func WithSweepInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.sweepInterval = d
	}
}

// NewMemoryStore creates an in-memory store and starts its background sweep.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*State),
		maxAge:        1 * time.Hour,
		sweepInterval: 5 * time.Minute,
		stopSweep:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()

	return s
}

// Get retrieves a session by ID. Expired sessions read as not found; the
// sweep loop removes them later.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if time.Since(state.LastTurnAt) > s.maxAge {
		return nil, nil
	}
	return state, nil
}

// Save creates or updates a session.
func (s *MemoryStore) Save(_ context.Context, state *State) error {
	if state == nil {
		return fmt.Errorf("session state is nil")
	}
	if state.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now()
	}
	if state.LastTurnAt.IsZero() {
		state.LastTurnAt = time.Now()
	}
	s.sessions[state.SessionID] = state
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopSweep)
	})
	return nil
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopSweep:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, state := range s.sessions {
		if now.Sub(state.LastTurnAt) > s.maxAge {
			delete(s.sessions, id)
		}
	}
}

// StoreStats reports current store occupancy.
type StoreStats struct {
	SessionCount int `json:"session_count"`
	TotalTurns   int `json:"total_turns"`
}

// Stats returns occupancy counters for the health endpoint.
func (s *MemoryStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := StoreStats{SessionCount: len(s.sessions)}
	for _, state := range s.sessions {
		stats.TotalTurns += state.TurnCount
	}
	return stats
}

var _ Store = (*MemoryStore)(nil)
