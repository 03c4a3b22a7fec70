// Package session keeps one layered store per active user.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/linkstore"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

// ErrInvalidUsername rejects usernames that cannot name a collection.
var ErrInvalidUsername = errors.New("invalid username")

// Session is the state of one user: their identity oracle and their store.
type Session struct {
	Username string
	Oracle   *identity.Static
	Store    *linkstore.Store

	cancel context.CancelFunc

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time of the last Acquire.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Manager creates sessions on first use and hands them out afterwards.
type Manager struct {
	adapter storage.Adapter
	cache   storage.Cache
	logger  logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager. cache may be nil; when set it is shared by
// every session, each one scoped to its own user.
func NewManager(adapter storage.Adapter, cache storage.Cache, log logger.Logger) *Manager {
	return &Manager{
		adapter:  adapter,
		cache:    cache,
		logger:   log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns username's session, creating and loading it when needed.
// The administrator flag of an existing session is updated in place, and its
// store recomputes what the user can see before Acquire returns.
func (m *Manager) Acquire(ctx context.Context, username string, admin bool) (*Session, error) {
	if !storage.ValidUsername(username) {
		return nil, ErrInvalidUsername
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[username]; ok {
		if s.Oracle.IsAdministrator() != admin {
			s.Oracle.Set(username, admin)
			s.Store.Refresh(ctx)
		}
		s.touch(m.now())
		return s, nil
	}

	oracle := identity.NewStatic(username, admin)
	var cache storage.Cache
	if m.cache != nil {
		cache = storage.ForUser(m.cache, username)
	}
	store := linkstore.New(linkstore.Options{
		Adapter: m.adapter,
		Cache:   cache,
		Oracle:  oracle,
		Logger:  m.logger.With(logger.String("user", username)),
	})
	store.LoadAll(ctx)

	watchCtx, cancel := context.WithCancel(context.Background())
	go store.Watch(watchCtx)

	s := &Session{
		Username: username,
		Oracle:   oracle,
		Store:    store,
		cancel:   cancel,
	}
	s.touch(m.now())
	m.sessions[username] = s

	m.logger.Info("session opened",
		logger.String("user", username),
		logger.Bool("admin", admin),
	)
	return s, nil
}

// Close ends username's session. Unsaved changes are dropped.
func (m *Manager) Close(username string) {
	m.mu.Lock()
	s, ok := m.sessions[username]
	delete(m.sessions, username)
	m.mu.Unlock()

	if !ok {
		return
	}
	s.cancel()

	if dirty := s.Store.Dirty(); dirty.Any() {
		m.logger.Warn("session closed with unsaved changes",
			logger.String("user", username),
			logger.Bool("global", dirty.Global),
			logger.Strings("personal", dirty.Personal),
		)
	}
	m.logger.Info("session closed", logger.String("user", username))
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	for _, s := range m.Sessions() {
		m.Close(s.Username)
	}
}

// Sessions returns a snapshot of the open sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
