package linkstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

func seededAdapter(t *testing.T) *fakeAdapter {
	t.Helper()
	a := newFakeAdapter()
	seed(t, a, storage.KeyGlobal, doc(
		rec("g1", "Grafana", "https://grafana.example.com", "Monitoring"),
		rec("g2", "Wiki", "https://wiki.example.com", ""),
	))
	seed(t, a, "users/alice", doc(rec("a1", "Notes", "https://notes.example.com", "Docs")))
	seed(t, a, "users/bob", doc(rec("b1", "Mail", "https://mail.example.com", "General")))
	seed(t, a, storage.KeyUserList, []string{"alice", "bob"})
	return a
}

func TestLoadAllNonAdminSeesGlobalAndOwnLinks(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "alice", false)

	assert.Equal(t, []string{"g1", "g2", "a1"}, linkIDs(f.store.All()))

	g2, ok := f.store.Find("g2")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultGroup, g2.Group)
	assert.Equal(t, domain.LayerGlobal, g2.Layer)

	a1, ok := f.store.Find("a1")
	require.True(t, ok)
	assert.Equal(t, domain.LayerPersonal, a1.Layer)
	assert.Equal(t, "alice", a1.Owner)

	_, ok = f.store.Find("b1")
	assert.False(t, ok, "other users' links are not visible")
}

func TestLoadAllAdminLoadsRegistryUsers(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "root", true)

	assert.Equal(t, []string{"g1", "g2", "a1", "b1"}, linkIDs(f.store.All()))
	assert.False(t, f.store.Dirty().Any())
}

func TestLoadAllForcesLayerFromDocument(t *testing.T) {
	a := newFakeAdapter()
	seed(t, a, storage.KeyGlobal, []map[string]any{
		{"id": "x", "name": "Tricky", "url": "https://x", "_layer": "personal", "_owner": "mallory"},
	})

	f := newFixture(t, a, "alice", false)
	x, ok := f.store.Find("x")
	require.True(t, ok)
	assert.Equal(t, domain.LayerGlobal, x.Layer)
	assert.Empty(t, x.Owner)
}

func TestLoadAllReadFailureYieldsEmpty(t *testing.T) {
	a := seededAdapter(t)
	a.failRead[storage.KeyGlobal] = true
	require.NoError(t, a.MemoryAdapter.Write(context.Background(), "users/alice", []byte("{not json")))

	f := newFixture(t, a, "alice", false)
	assert.Empty(t, f.store.All())
}

func TestLoadAllFallsBackToCacheForCurrentUserOnly(t *testing.T) {
	a := seededAdapter(t)
	a.failRead[storage.KeyGlobal] = true
	a.failRead["users/alice"] = true
	a.failRead["users/bob"] = true

	cache := storage.NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "root:"+storage.CacheKeyGlobal, `[{"id":"cg","name":"Cached","url":"https://cached"}]`))
	require.NoError(t, cache.Set(ctx, "root:"+storage.CacheKeyPersonal, `[{"id":"cp","name":"Mine","url":"https://mine"}]`))

	f := &fixture{adapter: a, cache: cache}
	f.store = New(Options{
		Adapter: a,
		Cache:   storage.ForUser(cache, "root"),
		Oracle:  newOracle("root", true),
	})
	f.store.LoadAll(ctx)

	ids := linkIDs(f.store.All())
	assert.Equal(t, []string{"cg", "cp"}, ids, "bob's unreadable collection must not come from root's cache")

	cp, _ := f.store.Find("cp")
	assert.Equal(t, "root", cp.Owner)
}

func TestLoadAllIgnoresCacheWhenPrimaryReadable(t *testing.T) {
	a := seededAdapter(t)
	cache := storage.NewMemoryCache()
	require.NoError(t, cache.Set(context.Background(), "alice:"+storage.CacheKeyGlobal, `[{"id":"stale","name":"Stale","url":"https://stale"}]`))

	s := New(Options{Adapter: a, Cache: storage.ForUser(cache, "alice"), Oracle: newOracle("alice", false)})
	s.LoadAll(context.Background())

	_, ok := s.Find("stale")
	assert.False(t, ok)
}

func TestLoadAllDiscardsUnsavedChanges(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "root", true)
	require.NoError(t, f.store.Move("g2", "g1"))
	require.True(t, f.store.Dirty().Global)

	f.store.LoadAll(context.Background())
	assert.False(t, f.store.Dirty().Any())
	assert.Equal(t, []string{"g1", "g2", "a1", "b1"}, linkIDs(f.store.All()))
}
