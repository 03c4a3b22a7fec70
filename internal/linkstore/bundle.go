package linkstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

// Bundle is a parsed import payload. Each collection it names replaces the
// loaded one in full.
type Bundle struct {
	// Layered is false for the legacy flat shape, which only ever carries
	// global links.
	Layered bool

	// HasGlobal reports whether Global replaces the global collection.
	HasGlobal bool
	Global    []domain.Link

	// Personal maps owners to their new collection.
	Personal map[string][]domain.Link
}

// Export is the document produced by Export.
type Export struct {
	Version       int                      `json:"version"`
	ExportedAt    time.Time                `json:"exported_at"`
	GlobalLinks   []domain.Link            `json:"globalLinks"`
	PersonalLinks map[string][]domain.Link `json:"personalLinks"`
}

// ParseBundle recognizes the layered shape {globalLinks, personalLinks} and
// the legacy flat shape (a bare array, or {links}). Records are hydrated into
// the collection they are listed under and their URLs normalized. Any other
// payload is a *domain.FormatError.
func (s *Store) ParseBundle(data []byte) (Bundle, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Bundle{}, &domain.FormatError{Reason: err.Error()}
	}

	obj, isObject := parsed.(map[string]any)
	if isObject && (obj["globalLinks"] != nil || obj["personalLinks"] != nil) {
		return s.parseLayered(obj)
	}

	raws, ok := linksOf(parsed)
	if !ok {
		return Bundle{}, &domain.FormatError{Reason: "expected an array of links"}
	}
	return Bundle{
		HasGlobal: true,
		Global:    s.importAll(raws, domain.LayerGlobal, ""),
	}, nil
}

func (s *Store) parseLayered(obj map[string]any) (Bundle, error) {
	b := Bundle{Layered: true, Personal: make(map[string][]domain.Link)}

	if arr, ok := obj["globalLinks"].([]any); ok {
		b.HasGlobal = true
		b.Global = s.importAll(rawLinks(arr), domain.LayerGlobal, "")
	}

	if users, ok := obj["personalLinks"].(map[string]any); ok {
		for owner, value := range users {
			if !storage.ValidUsername(owner) {
				return Bundle{}, &domain.FormatError{Reason: "invalid username " + owner}
			}
			// A user entry that is not an array empties that collection.
			arr, _ := value.([]any)
			b.Personal[owner] = s.importAll(rawLinks(arr), domain.LayerPersonal, owner)
		}
	}

	if !b.HasGlobal && len(b.Personal) == 0 {
		if _, ok := obj["personalLinks"].(map[string]any); !ok {
			return Bundle{}, &domain.FormatError{Reason: "no globalLinks array or personalLinks object"}
		}
	}
	return b, nil
}

func (s *Store) importAll(raws []domain.RawLink, layer domain.Layer, owner string) []domain.Link {
	links := s.placeAll(raws, layer, owner)
	for i := range links {
		links[i].URL = domain.NormalizeURL(links[i].URL)
	}
	return links
}

// ImportBundle replaces every collection named by b and writes each of them.
// Administrators only. Records whose ID already exists elsewhere get a fresh
// one so IDs stay unique across collections.
func (s *Store) ImportBundle(ctx context.Context, b Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, admin := s.identity(); !admin {
		return domain.ErrNotPermitted
	}

	owners := make([]string, 0, len(b.Personal))
	for owner := range b.Personal {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	// IDs of collections left untouched by the import
	taken := make(map[string]struct{})
	if !b.HasGlobal {
		for _, l := range s.global {
			taken[l.ID] = struct{}{}
		}
	}
	for owner, links := range s.personal {
		if _, replaced := b.Personal[owner]; replaced {
			continue
		}
		for _, l := range links {
			taken[l.ID] = struct{}{}
		}
	}

	if b.HasGlobal {
		s.global = uniqueIDs(b.Global, taken)
		s.dirtyGlobal = true
	}
	for _, owner := range owners {
		s.personal[owner] = uniqueIDs(b.Personal[owner], taken)
		s.dirtyPersonal[owner] = true
	}
	s.rebuild()

	var errs []error
	if b.HasGlobal {
		if err := s.persistGlobal(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, owner := range owners {
		if err := s.persistPersonal(ctx, owner); err != nil {
			errs = append(errs, err)
		}
	}

	s.log.Info("links imported",
		logger.Bool("layered", b.Layered),
		logger.Bool("global", b.HasGlobal),
		logger.Int("global_links", len(b.Global)),
		logger.Strings("owners", owners),
	)
	return errors.Join(errs...)
}

// uniqueIDs copies links, renumbering any ID already in taken, and records
// the resulting IDs in taken.
func uniqueIDs(links []domain.Link, taken map[string]struct{}) []domain.Link {
	out := make([]domain.Link, len(links))
	for i, l := range links {
		if _, dup := taken[l.ID]; dup {
			l.ID = domain.NewID()
		}
		taken[l.ID] = struct{}{}
		out[i] = l
	}
	return out
}

// Export returns every collection visible to the session.
func (s *Store) Export() Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, admin := s.identity()

	out := Export{
		Version:       DocumentVersion,
		ExportedAt:    s.now(),
		GlobalLinks:   append([]domain.Link{}, s.global...),
		PersonalLinks: make(map[string][]domain.Link, len(s.personal)),
	}
	for owner, links := range s.personal {
		if !admin && owner != user {
			continue
		}
		out.PersonalLinks[owner] = append([]domain.Link{}, links...)
	}
	return out
}
