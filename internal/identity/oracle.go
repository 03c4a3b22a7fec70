// Package identity supplies the current user and their administrator rights.
// Authentication happens elsewhere; this package only reports its outcome.
package identity

import "sync"

// Oracle reports who is using a session and whether they are an
// administrator. Both may change while the session is alive; subscribers are
// notified on every change.
type Oracle interface {
	CurrentUsername() string
	IsAdministrator() bool

	// Subscribe returns a channel receiving one value per change (changes
	// may be coalesced) and a function releasing the subscription.
	Subscribe() (<-chan struct{}, func())
}

// Static is an Oracle whose values are pushed by the host.
type Static struct {
	mu       sync.RWMutex
	username string
	admin    bool
	subs     map[int]chan struct{}
	nextID   int
}

// NewStatic creates an oracle reporting username and admin.
func NewStatic(username string, admin bool) *Static {
	return &Static{
		username: username,
		admin:    admin,
		subs:     make(map[int]chan struct{}),
	}
}

func (s *Static) CurrentUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Static) IsAdministrator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// Set updates both values and notifies subscribers if anything changed.
func (s *Static) Set(username string, admin bool) {
	s.mu.Lock()
	changed := s.username != username || s.admin != admin
	s.username = username
	s.admin = admin
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// SetAdmin updates the administrator flag only.
func (s *Static) SetAdmin(admin bool) {
	s.Set(s.CurrentUsername(), admin)
}

func (s *Static) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Static) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
			// a change is already pending for this subscriber
		}
	}
}
