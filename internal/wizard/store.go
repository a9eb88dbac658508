package wizard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// DefaultSessionTTL is how long an idle session is kept
const DefaultSessionTTL = 2 * time.Hour

// Store keeps the live wizard sessions in memory
type Store struct {
	deps Dependencies
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]*Controller
	onIdle   func()
}

// NewStore creates an empty store. A non-positive ttl uses DefaultSessionTTL.
func NewStore(deps Dependencies, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Store{
		deps:     deps,
		ttl:      ttl,
		sessions: make(map[string]*Controller),
	}
}

// Create starts a new session of the given variant
func (s *Store) Create(v models.Variant) (*Controller, error) {
	strategy, err := StrategyFor(v)
	if err != nil {
		return nil, err
	}

	c := NewController(uuid.NewString(), strategy, s.deps)

	s.mu.Lock()
	s.sessions[c.ID()] = c
	s.mu.Unlock()

	log.Printf("Created %s session %s", v, c.ID())
	return c, nil
}

// Get returns a live session
func (s *Store) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Delete drops a session; unknown ids are ignored
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// OnIdle sets a function called after a sweep expires the last live session
func (s *Store) OnIdle(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onIdle = fn
}

// Sweep drops the sessions idle since before now minus the ttl and returns how many went
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, c := range s.sessions {
		if c.LastUsed().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	idle := s.onIdle
	if removed == 0 || len(s.sessions) > 0 {
		idle = nil
	}
	s.mu.Unlock()

	if idle != nil {
		idle()
	}
	return removed
}

// RunSweeper sweeps expired sessions every interval until ctx is done
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.deps.Now()); n > 0 {
				log.Printf("Expired %d idle sessions", n)
			}
		}
	}
}
