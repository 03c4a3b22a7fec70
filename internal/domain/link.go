package domain

import "time"

// Layer names the collection that owns a link.
type Layer string

const (
	LayerGlobal   Layer = "global"
	LayerPersonal Layer = "personal"
)

const (
	// DefaultGroup replaces a missing or blank group at hydration time.
	DefaultGroup = "General"

	// AdminEditedTag is appended to the description when an administrator
	// edits another user's personal link.
	AdminEditedTag = "(Admin Edited)"
)

// Valid reports whether l is one of the known layers.
func (l Layer) Valid() bool {
	return l == LayerGlobal || l == LayerPersonal
}

// Link represents one bookmark entry of the dashboard.
//
// Layer and Owner are never persisted on the record itself: they are inferred
// from the document the record was read from.
type Link struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned at creation and never changes, even across layer
	// migrations. Duplication is the only way to get a new ID.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Name        string `json:"name"`
	URL         string `json:"url"`
	Group       string `json:"group"`
	Description string `json:"description"`

	// OpenInFrame is a display preference of the presentation layer.
	OpenInFrame bool `json:"open_in_frame"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set once at creation.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every content change.
	UpdatedAt time.Time `json:"updated_at"`

	// ─────────────────────────────
	// Ownership (derived)
	// ─────────────────────────────

	// Layer is the collection currently holding the record.
	Layer Layer `json:"-"`

	// Owner is the personal collection key, empty for global links.
	Owner string `json:"-"`
}

// IsGlobal reports whether the link belongs to the global collection.
func (l Link) IsGlobal() bool {
	return l.Layer == LayerGlobal
}

// SameCollection reports whether a and b live in the same collection.
func SameCollection(a, b Link) bool {
	return a.Layer == b.Layer && a.Owner == b.Owner
}

// Place returns a copy of l assigned to the given collection, keeping the
// global ⇔ no owner invariant.
func (l Link) Place(layer Layer, owner string) Link {
	l.Layer = layer
	if layer == LayerGlobal {
		l.Owner = ""
	} else {
		l.Owner = owner
	}
	return l
}
