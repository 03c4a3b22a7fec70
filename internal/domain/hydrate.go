package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawLink is an untyped link as found in imported or on-disk JSON.
type RawLink map[string]any

// NewID generates link identifiers. Replaced in tests.
var NewID = uuid.NewString

// Now is the clock used by Hydrate. Timestamps are kept in UTC at
// millisecond precision, which is what the persisted ISO8601 strings carry.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Hydrate normalizes raw into a structurally valid Link. It never fails:
// every field is coerced to its type and trimmed, and missing values get the
// default group, layer, owner, a fresh ID and the current time.
//
// Hydrating an already hydrated record yields the same record.
func Hydrate(raw RawLink, layer Layer, owner string) Link {
	return HydrateAt(raw, layer, owner, Now())
}

// HydrateAt is Hydrate with an explicit current time.
func HydrateAt(raw RawLink, layer Layer, owner string, now time.Time) Link {
	group := DefaultGroup
	if v, ok := raw["group"]; ok && v != nil {
		group = strings.TrimSpace(asString(v))
	}
	if group == "" {
		group = DefaultGroup
	}

	id := strings.TrimSpace(asString(raw["id"]))
	if id == "" {
		id = NewID()
	}

	createdAt, ok := asTime(raw["created_at"])
	if !ok {
		createdAt = now
	}
	updatedAt, ok := asTime(raw["updated_at"])
	if !ok {
		updatedAt = createdAt
	}

	l := Link{
		ID:          id,
		Name:        strings.TrimSpace(asString(raw["name"])),
		URL:         strings.TrimSpace(asString(raw["url"])),
		Group:       group,
		Description: strings.TrimSpace(asString(raw["description"])),
		OpenInFrame: truthy(raw["open_in_frame"]),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	rawLayer := Layer(firstString(raw, "layer", "_layer"))
	switch {
	case rawLayer.Valid():
		l.Layer = rawLayer
	case layer.Valid():
		l.Layer = layer
	default:
		l.Layer = LayerPersonal
	}

	l.Owner = firstString(raw, "owner", "_owner")
	if l.Owner == "" {
		l.Owner = owner
	}
	if l.Layer == LayerGlobal {
		l.Owner = ""
	}

	return l
}

// Raw converts l back into its untyped form, including layer and owner.
func (l Link) Raw() RawLink {
	return RawLink{
		"id":            l.ID,
		"name":          l.Name,
		"url":           l.URL,
		"group":         l.Group,
		"description":   l.Description,
		"open_in_frame": l.OpenInFrame,
		"created_at":    l.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    l.UpdatedAt.Format(time.RFC3339Nano),
		"layer":         string(l.Layer),
		"owner":         l.Owner,
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

func firstString(raw RawLink, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(asString(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

func asTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return t.UTC(), true
	}
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// truthy mirrors how loosely typed JSON flags are interpreted: empty strings,
// zero numbers, false and null are false; everything else is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
