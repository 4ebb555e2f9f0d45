// Package session keys live conversations and serializes their turns. Each
// session owns one context graph; turns within a session run one at a time
// while separate sessions proceed independently. A session left idle past
// the configured timeout keeps its id but starts over with a fresh graph.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/abramin/wattson/internal/dialog"
	"github.com/abramin/wattson/internal/graph"
)

// ErrSessionNotFound reports a Handle or Reset against an id that was
// never opened (or was pruned).
var ErrSessionNotFound = errors.New("session not found")

// DefaultIdleTimeout is how long a conversation may sit untouched before
// its next turn starts from an empty graph.
const DefaultIdleTimeout = 30 * time.Minute

// Dispatcher runs one turn against a graph and returns the graph to carry
// forward. *dialog.Dispatcher satisfies this.
type Dispatcher interface {
	Dispatch(ctx context.Context, scope, ask string, g *graph.Graph) (dialog.Reply, *graph.Graph, error)
}

// Config tunes a Manager.
type Config struct {
	// IdleTimeout is the inactivity window after which a session's graph
	// resets. Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration
}

type session struct {
	mu       sync.Mutex
	scope    string
	g        *graph.Graph
	lastSeen time.Time
}

// Manager tracks sessions by id and funnels their turns through the
// dispatcher one at a time per session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	d      Dispatcher
	idle   time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewManager wires a Manager over the dispatcher. A nil logger discards
// logs.
func NewManager(d Dispatcher, cfg Config, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{
		sessions: make(map[string]*session),
		d:        d,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
	}
}

// Open registers a conversation under id with the given preference scope
// and returns the id. An empty id gets a generated uuid. Opening an
// existing id is a no-op that returns the same id.
func (m *Manager) Open(id, scope string) string {
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		m.sessions[id] = &session{scope: scope, g: graph.New(), lastSeen: m.now()}
	}
	return id
}

// Handle runs one user turn in the session. The session's mutex is held
// for the whole turn, so concurrent turns on one session queue up while
// other sessions keep moving.
func (m *Manager) Handle(ctx context.Context, id, ask string) (dialog.Reply, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return dialog.Reply{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := m.now()
	if now.Sub(s.lastSeen) > m.idle {
		m.logger.Info("session idle past timeout, starting a fresh graph",
			"session", id, "idle", now.Sub(s.lastSeen))
		s.g = graph.New()
	}

	reply, next, err := m.d.Dispatch(ctx, s.scope, ask, s.g)
	if err != nil {
		return dialog.Reply{}, err
	}
	s.g = next
	s.lastSeen = m.now()
	return reply, nil
}

// Reset discards the session's graph so its next turn starts over.
func (m *Manager) Reset(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g = graph.New()
	s.lastSeen = m.now()
	return nil
}

// Prune drops every session idle past the timeout and reports how many
// were removed. A session mid-turn is busy, not idle, and is left alone.
// Safe to call from a sweeper goroutine.
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	dropped := 0
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > m.idle {
			delete(m.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		m.logger.Debug("pruned idle sessions", "count", dropped)
	}
	return dropped
}

// Len reports how many sessions are currently registered.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
