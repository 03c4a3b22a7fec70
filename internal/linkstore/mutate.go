package linkstore

import (
	"context"
	"errors"
	"sort"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

// DuplicateSuffix is appended to the name of a duplicated link.
const DuplicateSuffix = " (copy)"

// Upsert creates a link from draft, or replaces previous with it.
//
// Administrators may target the global layer through draft.Layer; everyone
// else always writes to their own personal collection. An administrator
// editing another user's personal link gets the admin-edited marker appended
// to the description.
//
// When the edit moves the record to another collection, the destination is
// written first and the source second, only if the first write succeeded. A
// failed write is returned while the in-memory change is kept and the
// collection stays dirty.
func (s *Store) Upsert(ctx context.Context, draft domain.Link, previous *domain.Link) (domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, admin := s.identity()

	var prev *domain.Link
	if previous != nil {
		stored, ok := s.view.Find(previous.ID)
		if !ok {
			return domain.Link{}, domain.ErrNotFound
		}
		if !domain.CanEdit(stored, user, admin) {
			return domain.Link{}, domain.ErrNotPermitted
		}
		prev = &stored
		// an edit that names no layer stays where it is
		if draft.Layer == "" {
			draft.Layer = stored.Layer
		}
	}

	layer, owner := domain.LayerPersonal, user
	switch {
	case admin && draft.Layer == domain.LayerGlobal:
		layer, owner = domain.LayerGlobal, ""
	case admin && prev != nil && prev.Layer == domain.LayerPersonal:
		owner = prev.Owner
	}
	if layer == domain.LayerPersonal && owner == "" {
		return domain.Link{}, domain.ErrNotPermitted
	}

	description := draft.Description
	if admin && prev != nil && prev.Layer == domain.LayerPersonal && prev.Owner != user {
		description = domain.MarkAdminEdited(description)
	}

	now := s.now()
	raw := domain.RawLink{
		"id":            domain.NewID(),
		"name":          draft.Name,
		"url":           domain.NormalizeURL(draft.URL),
		"group":         draft.Group,
		"description":   description,
		"open_in_frame": draft.OpenInFrame,
		"created_at":    now,
		"updated_at":    now,
	}
	if prev != nil {
		raw["id"] = prev.ID
		raw["created_at"] = prev.CreatedAt
	}
	record := domain.HydrateAt(raw, layer, owner, now).Place(layer, owner)

	// Validate what the user typed: a foreign scheme must not hide behind
	// the https:// prefix added by normalization.
	typed := record
	typed.URL = draft.URL
	if err := domain.Validate(typed); err != nil {
		return domain.Link{}, err
	}

	if prev != nil {
		s.removeFromCollection(*prev)
	}
	s.appendToCollection(record)
	s.rebuild()

	migrated := prev != nil && !domain.SameCollection(*prev, record)
	if migrated {
		s.log.Info("link migrated",
			logger.String("id", record.ID),
			logger.String("from", collectionName(prev.Layer, prev.Owner)),
			logger.String("to", collectionName(record.Layer, record.Owner)),
		)
	}

	if err := s.persist(ctx, record.Layer, record.Owner); err != nil {
		return record, err
	}
	if migrated {
		if err := s.persist(ctx, prev.Layer, prev.Owner); err != nil {
			return record, err
		}
	}
	return record, nil
}

// Duplicate clones link into its own collection under a fresh ID, and saves
// that collection.
func (s *Store) Duplicate(ctx context.Context, link domain.Link) (domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.editable(link.ID)
	if err != nil {
		return domain.Link{}, err
	}

	now := s.now()
	clone := source
	clone.ID = domain.NewID()
	clone.Name = source.Name + DuplicateSuffix
	clone.CreatedAt = now
	clone.UpdatedAt = now

	s.appendToCollection(clone)
	s.rebuild()

	return clone, s.persist(ctx, clone.Layer, clone.Owner)
}

// Remove deletes link from its collection and saves that collection.
func (s *Store) Remove(ctx context.Context, link domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.editable(link.ID)
	if err != nil {
		return err
	}

	s.removeFromCollection(stored)
	s.rebuild()

	return s.persist(ctx, stored.Layer, stored.Owner)
}

// Move reorders a collection in memory: the record fromID takes the position
// of toID. Both must belong to the same collection. Nothing is written until
// SaveOrder.
func (s *Store) Move(fromID, toID string) error {
	if fromID == "" || toID == "" || fromID == toID {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.view.Find(fromID)
	if !ok {
		return domain.ErrNotFound
	}
	to, ok := s.view.Find(toID)
	if !ok {
		return domain.ErrNotFound
	}
	if !domain.SameCollection(from, to) {
		return domain.ErrCrossCollectionMove
	}
	if !s.CanEdit(from) {
		return domain.ErrNotPermitted
	}

	links := s.collection(from.Layer, from.Owner)
	fi, ti := indexOf(links, fromID), indexOf(links, toID)
	if fi < 0 || ti < 0 {
		return domain.ErrNotFound
	}

	moved := links[fi]
	links = append(links[:fi], links[fi+1:]...)
	links = append(links[:ti], append([]domain.Link{moved}, links[ti:]...)...)

	s.setCollection(from.Layer, from.Owner, links)
	s.markDirty(from.Layer, from.Owner)
	s.rebuild()
	return nil
}

// SaveOrder writes every dirty collection: the global one when the session is
// an administrator, and each dirty personal collection whoever owns it. Each
// flag is cleared only by its own successful write; all failures are
// returned joined.
func (s *Store) SaveOrder(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if _, admin := s.identity(); s.dirtyGlobal && admin {
		if err := s.persistGlobal(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	owners := make([]string, 0, len(s.dirtyPersonal))
	for owner, dirty := range s.dirtyPersonal {
		if dirty {
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)
	for _, owner := range owners {
		if err := s.persistPersonal(ctx, owner); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// editable resolves id in the merged view and applies the edit gate.
func (s *Store) editable(id string) (domain.Link, error) {
	stored, ok := s.view.Find(id)
	if !ok {
		return domain.Link{}, domain.ErrNotFound
	}
	if !s.CanEdit(stored) {
		return domain.Link{}, domain.ErrNotPermitted
	}
	return stored, nil
}

func (s *Store) collection(layer domain.Layer, owner string) []domain.Link {
	if layer == domain.LayerGlobal {
		return s.global
	}
	return s.personal[owner]
}

func (s *Store) setCollection(layer domain.Layer, owner string, links []domain.Link) {
	if layer == domain.LayerGlobal {
		s.global = links
		return
	}
	s.personal[owner] = links
}

func (s *Store) appendToCollection(l domain.Link) {
	links := s.collection(l.Layer, l.Owner)
	s.setCollection(l.Layer, l.Owner, append(links, l))
	s.markDirty(l.Layer, l.Owner)
}

func (s *Store) removeFromCollection(l domain.Link) {
	links := s.collection(l.Layer, l.Owner)
	kept := make([]domain.Link, 0, len(links))
	for _, x := range links {
		if x.ID != l.ID {
			kept = append(kept, x)
		}
	}
	s.setCollection(l.Layer, l.Owner, kept)
	s.markDirty(l.Layer, l.Owner)
}

func indexOf(links []domain.Link, id string) int {
	for i, l := range links {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func collectionName(layer domain.Layer, owner string) string {
	if layer == domain.LayerGlobal {
		return string(layer)
	}
	return string(layer) + ":" + owner
}
