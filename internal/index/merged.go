package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
)

// Query narrows the merged view. Empty fields match everything.
type Query struct {
	Text  string
	Group string
}

// MergedView is the derived, read-only union of every loaded collection.
// It is rebuilt wholesale after each mutation and never persisted.
type MergedView struct {
	mu          sync.RWMutex
	links       []domain.Link  // display order: global first, then personal collections
	byID        map[string]int // ID -> position in links
	lastRebuild time.Time      // Timestamp of last rebuild
}

// NewMergedView creates an empty view.
func NewMergedView() *MergedView {
	return &MergedView{
		byID: make(map[string]int),
	}
}

// Update replaces the content of the view. The slice is copied.
func (v *MergedView) Update(links []domain.Link) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Clear and rebuild
	v.links = make([]domain.Link, len(links))
	copy(v.links, links)
	v.byID = make(map[string]int, len(links))
	for i, l := range v.links {
		v.byID[l.ID] = i
	}
	v.lastRebuild = time.Now()
}

// All returns every link in display order.
func (v *MergedView) All() []domain.Link {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]domain.Link, len(v.links))
	copy(out, v.links)
	return out
}

// Find retrieves a link by ID.
func (v *MergedView) Find(id string) (domain.Link, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	i, ok := v.byID[id]
	if !ok {
		return domain.Link{}, false
	}
	return v.links[i], true
}

// Filter returns the links matching q, in display order. A link matches when
// the group filter is empty or equals its group ignoring case, and the text is
// empty or a case-insensitive substring of its name, group, url, description
// and owner.
func (v *MergedView) Filter(q Query) []domain.Link {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	group := strings.ToLower(strings.TrimSpace(q.Group))

	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]domain.Link, 0, len(v.links))
	for _, l := range v.links {
		if group != "" && strings.ToLower(l.Group) != group {
			continue
		}
		if text != "" && !strings.Contains(haystack(l), text) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func haystack(l domain.Link) string {
	return strings.ToLower(strings.Join([]string{l.Name, l.Group, l.URL, l.Description, l.Owner}, " "))
}

// Groups returns the distinct groups of the view plus any extra ones, sorted
// case-insensitively.
func (v *MergedView) Groups(extra ...string) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	seen := make(map[string]struct{}, len(v.links)+len(extra))
	groups := make([]string, 0)
	add := func(g string) {
		if strings.TrimSpace(g) == "" {
			return
		}
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		groups = append(groups, g)
	}
	for _, l := range v.links {
		add(l.Group)
	}
	for _, g := range extra {
		add(g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i]), strings.ToLower(groups[j])
		if a == b {
			return groups[i] < groups[j]
		}
		return a < b
	})
	return groups
}

// Count returns the number of links in the view.
func (v *MergedView) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.links)
}

// LastRebuild returns the timestamp of the last Update.
func (v *MergedView) LastRebuild() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.lastRebuild
}
