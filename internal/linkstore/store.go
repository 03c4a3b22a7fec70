// Package linkstore is the layered link store: one global collection shared by
// everyone and one personal collection per user, merged into a single view.
//
// A Store lives for one session. Every operation holds the store lock until its
// persistence I/O has completed, so commands run one at a time.
package linkstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/index"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

// Options configures a Store.
type Options struct {
	Adapter storage.Adapter
	Cache   storage.Cache // optional degraded-mode cache, already scoped to the user
	Oracle  identity.Oracle
	Logger  logger.Logger
	Clock   func() time.Time // defaults to domain.Now
}

// Query is the filter applied to the merged view.
type Query = index.Query

// DirtyState lists the collections holding unsaved changes.
type DirtyState struct {
	Global   bool     `json:"global"`
	Personal []string `json:"personal"`
}

// Any reports whether anything is unsaved.
func (d DirtyState) Any() bool {
	return d.Global || len(d.Personal) > 0
}

// Store owns the collections of one session.
type Store struct {
	mu sync.Mutex

	adapter storage.Adapter
	cache   storage.Cache
	oracle  identity.Oracle
	log     logger.Logger
	now     func() time.Time

	global        []domain.Link
	personal      map[string][]domain.Link // owner -> collection
	dirtyGlobal   bool
	dirtyPersonal map[string]bool

	// identity as last observed, used to detect admin promotion
	wasAdmin bool

	view *index.MergedView
}

// New creates an empty Store. Call LoadAll to populate it.
func New(opts Options) *Store {
	s := &Store{
		adapter:       opts.Adapter,
		cache:         opts.Cache,
		oracle:        opts.Oracle,
		log:           opts.Logger,
		now:           opts.Clock,
		personal:      make(map[string][]domain.Link),
		dirtyPersonal: make(map[string]bool),
		view:          index.NewMergedView(),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = domain.Now
	}
	if s.oracle == nil {
		s.oracle = identity.NewStatic("", false)
	}
	return s
}

func (s *Store) identity() (string, bool) {
	return s.oracle.CurrentUsername(), s.oracle.IsAdministrator()
}

// CanEdit reports whether the session may modify l.
func (s *Store) CanEdit(l domain.Link) bool {
	user, admin := s.identity()
	return domain.CanEdit(l, user, admin)
}

// Filter returns the matching links of the merged view, in display order.
func (s *Store) Filter(q Query) []domain.Link {
	return s.view.Filter(q)
}

// All returns the merged view.
func (s *Store) All() []domain.Link {
	return s.view.All()
}

// Groups returns every group of the merged view plus the default group.
func (s *Store) Groups() []string {
	return s.view.Groups(domain.DefaultGroup)
}

// Find resolves id in the merged view.
func (s *Store) Find(id string) (domain.Link, bool) {
	return s.view.Find(id)
}

// LastRebuild is when the merged view was last recomputed.
func (s *Store) LastRebuild() time.Time {
	return s.view.LastRebuild()
}

// Dirty reports the collections with unsaved changes.
func (s *Store) Dirty() DirtyState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := DirtyState{Global: s.dirtyGlobal, Personal: []string{}}
	for owner, dirty := range s.dirtyPersonal {
		if dirty {
			state.Personal = append(state.Personal, owner)
		}
	}
	sort.Strings(state.Personal)
	return state
}

// Watch follows identity changes until ctx is done. On each change the
// merged view is recomputed and, when administrator rights were just gained,
// every registered user's collection is loaded.
func (s *Store) Watch(ctx context.Context) {
	changes, cancel := s.oracle.Subscribe()
	defer cancel()

	// catch up with changes made before the subscription
	s.refreshIdentity(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			s.refreshIdentity(ctx)
		}
	}
}

// Refresh re-reads the identity and recomputes the merged view right away,
// without waiting for Watch to observe the change.
func (s *Store) Refresh(ctx context.Context) {
	s.refreshIdentity(ctx)
}

func (s *Store) refreshIdentity(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, admin := s.identity()
	s.log.Debug("identity changed",
		logger.String("user", user),
		logger.Bool("admin", admin),
	)

	var missing []string
	if admin && !s.wasAdmin {
		missing = append(missing, s.registeredUsers(ctx)...)
	}
	missing = append(missing, user)
	for _, owner := range uniqSorted(missing) {
		if _, loaded := s.personal[owner]; !loaded {
			s.personal[owner] = s.loadPersonal(ctx, owner, user)
		}
	}

	s.wasAdmin = admin
	s.rebuild()
}

// rebuild recomputes the merged view. Administrators see every loaded
// collection; other users see the global collection and their own.
func (s *Store) rebuild() {
	user, admin := s.identity()

	merged := make([]domain.Link, 0, len(s.global))
	merged = append(merged, s.global...)

	if admin {
		owners := make([]string, 0, len(s.personal))
		for owner := range s.personal {
			owners = append(owners, owner)
		}
		sort.Strings(owners)
		for _, owner := range owners {
			merged = append(merged, s.personal[owner]...)
		}
	} else if user != "" {
		merged = append(merged, s.personal[user]...)
	}

	s.view.Update(merged)
}

// uniqSorted drops blanks and duplicates.
func uniqSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
