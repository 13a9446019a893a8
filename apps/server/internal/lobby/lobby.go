package lobby

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"dice-lite/apps/server/internal/codec"
	"dice-lite/apps/server/internal/session"
	"dice-lite/apps/server/internal/tally"

	"github.com/google/uuid"
)

// Lobby manages all live sessions
type Lobby struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	opened   int64

	store tally.Service
	// Default session config
	defaultConfig session.Config
}

// New creates a new lobby
func New(store tally.Service, cfg session.Config) *Lobby {
	return &Lobby{
		sessions:      make(map[string]*session.Session),
		store:         store,
		defaultConfig: cfg,
	}
}

// Open creates a session with a fresh ID. With a fixed seed, sessions get
// Seed, Seed+1, ... in opening order.
func (l *Lobby) Open(sendFn func(env codec.ServerEnvelope)) (*session.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := l.defaultConfig
	if cfg.Seed != 0 {
		cfg.Seed += l.opened
	}
	id := uuid.NewString()
	s, err := session.New(id, cfg, l.store, sendFn)
	if err != nil {
		return nil, err
	}
	l.opened++
	l.sessions[id] = s

	log.Printf("[Lobby] Opened session %s, total: %d", id, len(l.sessions))
	return s, nil
}

// Get returns a session by ID
func (l *Lobby) Get(sessionID string) *session.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessions[sessionID]
}

// Close stops the session and drops its tally rows.
func (l *Lobby) Close(sessionID string) {
	l.mu.Lock()
	s := l.sessions[sessionID]
	delete(l.sessions, sessionID)
	total := len(l.sessions)
	l.mu.Unlock()
	if s == nil {
		return
	}

	s.Stop()
	if l.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := l.store.Forget(ctx, sessionID); err != nil {
			log.Printf("[Lobby] forget session %s failed: %v", sessionID, err)
		}
	}
	log.Printf("[Lobby] Closed session %s (%s), total: %d", sessionID, s.TallyLabel(), total)
}

// List returns all session IDs, sorted
func (l *Lobby) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReapIdle closes sessions idle for at least ttl and returns how many.
func (l *Lobby) ReapIdle(ttl time.Duration) int {
	l.mu.RLock()
	var idle []string
	for id, s := range l.sessions {
		if s.IsIdleFor(ttl) {
			idle = append(idle, id)
		}
	}
	l.mu.RUnlock()

	for _, id := range idle {
		l.Close(id)
	}
	return len(idle)
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (l *Lobby) RunReaper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.ReapIdle(ttl); n > 0 {
				log.Printf("[Lobby] Reaped %d idle sessions", n)
			}
		}
	}
}
