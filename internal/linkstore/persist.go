package linkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

// DocumentVersion is written into every collection document.
const DocumentVersion = 2

// document is the persisted shape of one collection. Records carry no layer
// or owner: both follow from the key the document is stored under.
type document struct {
	Version   int           `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
	Links     []domain.Link `json:"links"`
}

func (s *Store) encode(links []domain.Link) ([]byte, error) {
	if links == nil {
		links = []domain.Link{}
	}
	return json.MarshalIndent(document{
		Version:   DocumentVersion,
		UpdatedAt: s.now(),
		Links:     links,
	}, "", "  ")
}

// persist writes the collection identified by layer and owner.
func (s *Store) persist(ctx context.Context, layer domain.Layer, owner string) error {
	if layer == domain.LayerGlobal {
		return s.persistGlobal(ctx)
	}
	return s.persistPersonal(ctx, owner)
}

// persistGlobal writes the global collection. Only administrators may.
func (s *Store) persistGlobal(ctx context.Context) error {
	if _, admin := s.identity(); !admin {
		return domain.ErrNotPermitted
	}

	data, err := s.encode(s.global)
	if err != nil {
		return fmt.Errorf("encode global collection: %w", err)
	}
	if err := s.adapter.Write(ctx, storage.KeyGlobal, data); err != nil {
		s.log.Warn("could not save global links",
			logger.String("adapter", s.adapter.Name()),
			logger.Error(err),
		)
		return &domain.PersistenceError{Op: "write", Key: storage.KeyGlobal, Err: err}
	}

	s.dirtyGlobal = false
	s.writeCache(ctx, storage.CacheKeyGlobal, s.global)
	return nil
}

// persistPersonal registers owner and writes their collection.
func (s *Store) persistPersonal(ctx context.Context, owner string) error {
	key, err := storage.UserKey(owner)
	if err != nil {
		return &domain.PersistenceError{Op: "write", Key: storage.KeyPrefixUser + owner, Err: err}
	}

	s.registerUser(ctx, owner)

	links := s.personal[owner]
	data, err := s.encode(links)
	if err != nil {
		return fmt.Errorf("encode personal collection %s: %w", owner, err)
	}
	if err := s.adapter.Write(ctx, key, data); err != nil {
		s.log.Warn("could not save personal links",
			logger.String("adapter", s.adapter.Name()),
			logger.String("owner", owner),
			logger.Error(err),
		)
		return &domain.PersistenceError{Op: "write", Key: key, Err: err}
	}

	delete(s.dirtyPersonal, owner)
	if user, _ := s.identity(); owner == user {
		s.writeCache(ctx, storage.CacheKeyPersonal, links)
	}
	return nil
}

// registerUser appends owner to the registry if absent. The registry only
// ever grows: when it cannot be read it is left untouched, and a failed write
// is logged and otherwise ignored.
func (s *Store) registerUser(ctx context.Context, owner string) {
	users, err := s.readRegistry(ctx)
	if err != nil {
		s.log.Warn("user registry not updated",
			logger.String("owner", owner),
			logger.Error(err),
		)
		return
	}
	if slices.Contains(users, owner) {
		return
	}
	users = append(users, owner)

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		s.log.Error("encode user registry", logger.Error(err))
		return
	}
	if err := s.adapter.Write(ctx, storage.KeyUserList, data); err != nil {
		s.log.Warn("could not register user",
			logger.String("owner", owner),
			logger.Error(err),
		)
		return
	}
	s.log.Info("user registered", logger.String("owner", owner))
}

func (s *Store) writeCache(ctx context.Context, key string, links []domain.Link) {
	if s.cache == nil {
		return
	}
	if links == nil {
		links = []domain.Link{}
	}
	data, err := json.Marshal(links)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data)); err != nil {
		s.log.Debug("cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (s *Store) markDirty(layer domain.Layer, owner string) {
	if layer == domain.LayerGlobal {
		s.dirtyGlobal = true
		return
	}
	s.dirtyPersonal[owner] = true
}
