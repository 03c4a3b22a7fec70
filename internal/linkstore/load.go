package linkstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

// LoadAll reads the global collection and the personal collections visible
// to the session: the current user's, or every registered user's for an
// administrator. It never fails; a collection that cannot be read falls back
// to the degraded-mode cache when allowed, and to empty otherwise.
//
// Unsaved changes are discarded.
func (s *Store) LoadAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, admin := s.identity()

	s.global = s.loadGlobal(ctx)

	owners := []string{user}
	if admin {
		owners = append(owners, s.registeredUsers(ctx)...)
	}

	s.personal = make(map[string][]domain.Link)
	for _, owner := range uniqSorted(owners) {
		s.personal[owner] = s.loadPersonal(ctx, owner, user)
	}

	s.dirtyGlobal = false
	s.dirtyPersonal = make(map[string]bool)
	s.wasAdmin = admin
	s.rebuild()

	s.log.Info("links loaded",
		logger.String("user", user),
		logger.Bool("admin", admin),
		logger.Int("global", len(s.global)),
		logger.Int("personal_collections", len(s.personal)),
		logger.Int("visible", s.view.Count()),
	)
}

func (s *Store) loadGlobal(ctx context.Context) []domain.Link {
	raws, err := s.readCollection(ctx, storage.KeyGlobal)
	if err == nil {
		return s.placeAll(raws, domain.LayerGlobal, "")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("global collection unreadable", logger.Error(err))
	}

	if raws, ok := s.readCache(ctx, storage.CacheKeyGlobal); ok {
		s.log.Warn("global collection served from cache")
		return s.placeAll(raws, domain.LayerGlobal, "")
	}
	return []domain.Link{}
}

func (s *Store) loadPersonal(ctx context.Context, owner, currentUser string) []domain.Link {
	key, err := storage.UserKey(owner)
	if err != nil {
		s.log.Warn("skipping personal collection", logger.String("owner", owner), logger.Error(err))
		return []domain.Link{}
	}

	raws, err := s.readCollection(ctx, key)
	if err == nil {
		return s.placeAll(raws, domain.LayerPersonal, owner)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("personal collection unreadable", logger.String("owner", owner), logger.Error(err))
	}

	// The cache only ever holds the current user's own links.
	if owner == currentUser {
		if raws, ok := s.readCache(ctx, storage.CacheKeyPersonal); ok {
			s.log.Warn("personal collection served from cache", logger.String("owner", owner))
			return s.placeAll(raws, domain.LayerPersonal, owner)
		}
	}
	return []domain.Link{}
}

// readCollection reads key and extracts its records. Both the versioned
// document and a bare array are accepted.
func (s *Store) readCollection(ctx context.Context, key string) ([]domain.RawLink, error) {
	data, err := s.adapter.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, &domain.PersistenceError{Op: "read", Key: key, Err: err}
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}

	raws, ok := linksOf(parsed)
	if !ok {
		return nil, fmt.Errorf("parse %s: no links array", key)
	}
	return raws, nil
}

func (s *Store) readCache(ctx context.Context, key string) ([]domain.RawLink, bool) {
	if s.cache == nil {
		return nil, false
	}
	value, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		s.log.Debug("cache entry unparsable", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	arr, ok := parsed.([]any)
	if !ok {
		return nil, false
	}
	return rawLinks(arr), true
}

// readRegistry returns the registered usernames. An absent registry is empty;
// any other read or decode failure is returned.
func (s *Store) readRegistry(ctx context.Context) ([]string, error) {
	data, err := s.adapter.Read(ctx, storage.KeyUserList)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read user registry: %w", err)
	}

	var users []string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode user registry: %w", err)
	}
	return users, nil
}

// registeredUsers is readRegistry for callers that can live without it.
func (s *Store) registeredUsers(ctx context.Context) []string {
	users, err := s.readRegistry(ctx)
	if err != nil {
		s.log.Warn("user registry unavailable", logger.Error(err))
	}
	return users
}

// linksOf accepts a bare array or an object carrying a links array.
func linksOf(parsed any) ([]domain.RawLink, bool) {
	switch v := parsed.(type) {
	case []any:
		return rawLinks(v), true
	case map[string]any:
		if arr, ok := v["links"].([]any); ok {
			return rawLinks(arr), true
		}
	}
	return nil, false
}

func rawLinks(arr []any) []domain.RawLink {
	out := make([]domain.RawLink, 0, len(arr))
	for _, item := range arr {
		m, _ := item.(map[string]any)
		out = append(out, domain.RawLink(m))
	}
	return out
}

// placeAll hydrates raws into the given collection. The collection a record
// is read from always decides its layer and owner.
func (s *Store) placeAll(raws []domain.RawLink, layer domain.Layer, owner string) []domain.Link {
	now := s.now()
	links := make([]domain.Link, 0, len(raws))
	for _, raw := range raws {
		links = append(links, domain.HydrateAt(raw, layer, owner, now).Place(layer, owner))
	}
	return links
}
