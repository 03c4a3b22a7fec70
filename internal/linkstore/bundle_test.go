package linkstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

func TestImportLegacyLinksObject(t *testing.T) {
	ctx := context.Background()
	a := seededAdapter(t)
	f := newFixture(t, a, "root", true)

	b, err := f.store.ParseBundle([]byte(`{"links":[{"name":"Docs","url":"example.com","group":"Ref"}]}`))
	require.NoError(t, err)
	assert.False(t, b.Layered)
	require.NoError(t, f.store.ImportBundle(ctx, b))

	stored := storedLinks(t, a, storage.KeyGlobal)
	require.Len(t, stored, 1)
	assert.Equal(t, "https://example.com", stored[0].URL)
	assert.Equal(t, "Ref", stored[0].Group)

	docs := f.store.Filter(Query{Text: "Docs", Group: "Ref"})
	require.Len(t, docs, 1)
	assert.Equal(t, domain.LayerGlobal, docs[0].Layer)
	assert.Empty(t, docs[0].Owner)

	_, ok := f.store.Find("a1")
	assert.True(t, ok, "a legacy import leaves personal collections alone")
}

func TestImportLegacyBareArray(t *testing.T) {
	f := newFixture(t, newFakeAdapter(), "root", true)

	b, err := f.store.ParseBundle([]byte(`[{"name":"A","url":"https://a"},{"name":"B","url":"b.example"}]`))
	require.NoError(t, err)
	require.True(t, b.HasGlobal)
	require.Len(t, b.Global, 2)
	assert.Equal(t, "https://b.example", b.Global[1].URL)
	assert.Equal(t, domain.DefaultGroup, b.Global[0].Group)
}

func TestImportLayeredReplacesNamedCollections(t *testing.T) {
	ctx := context.Background()
	a := seededAdapter(t)
	f := newFixture(t, a, "root", true)

	payload := `{
		"globalLinks": [{"id":"n1","name":"New","url":"https://new"}],
		"personalLinks": {
			"alice": [{"id":"n2","name":"Alice New","url":"https://alice"}],
			"dave": "not an array"
		}
	}`
	b, err := f.store.ParseBundle([]byte(payload))
	require.NoError(t, err)
	require.True(t, b.Layered)
	require.NoError(t, f.store.ImportBundle(ctx, b))

	assert.Equal(t, []string{"n1"}, linkIDs(storedLinks(t, a, storage.KeyGlobal)))
	assert.Equal(t, []string{"n2"}, linkIDs(storedLinks(t, a, "users/alice")))
	assert.Empty(t, storedLinks(t, a, "users/dave"))
	assert.Equal(t, []string{"b1"}, linkIDs(storedLinks(t, a, "users/bob")), "bob is not named and stays as is")
	assert.Equal(t, []string{"alice", "bob", "dave"}, storedRegistry(t, a))

	n2, ok := f.store.Find("n2")
	require.True(t, ok)
	assert.Equal(t, "alice", n2.Owner)
	assert.False(t, f.store.Dirty().Any())
}

func TestImportKeepsIDsUnique(t *testing.T) {
	ctx := context.Background()
	a := seededAdapter(t)
	f := newFixture(t, a, "root", true)

	b, err := f.store.ParseBundle([]byte(`{"links":[{"id":"b1","name":"Clash","url":"https://c"},{"id":"x","name":"X","url":"https://x"},{"id":"x","name":"X2","url":"https://x2"}]}`))
	require.NoError(t, err)
	require.NoError(t, f.store.ImportBundle(ctx, b))

	seen := map[string]int{}
	for _, l := range f.store.All() {
		seen[l.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %s appears %d times", id, n)
	}
	assert.Len(t, f.store.All(), 5)
}

func TestParseBundleFormatErrors(t *testing.T) {
	f := newFixture(t, newFakeAdapter(), "root", true)

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{"links":`},
		{name: "scalar", payload: `42`},
		{name: "object without array", payload: `{"items":[]}`},
		{name: "links not array", payload: `{"links":{"a":1}}`},
		{name: "layered without arrays", payload: `{"globalLinks":"nope"}`},
		{name: "bad username", payload: `{"personalLinks":{"../etc":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.store.ParseBundle([]byte(tt.payload))
			var ferr *domain.FormatError
			require.ErrorAs(t, err, &ferr)
			assert.Contains(t, ferr.Error(), "Invalid JSON format")
		})
	}
}

func TestImportRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	a := seededAdapter(t)
	f := newFixture(t, a, "alice", false)
	a.resetWrites()

	b, err := f.store.ParseBundle([]byte(`[{"name":"A","url":"https://a"}]`))
	require.NoError(t, err)

	assert.ErrorIs(t, f.store.ImportBundle(ctx, b), domain.ErrNotPermitted)
	assert.Empty(t, a.writtenKeys())
	assert.Equal(t, []string{"g1", "g2", "a1"}, linkIDs(f.store.All()))
}

func TestImportWriteFailureKeepsDirty(t *testing.T) {
	ctx := context.Background()
	a := seededAdapter(t)
	f := newFixture(t, a, "root", true)
	a.deny(storage.KeyGlobal, true)

	b, err := f.store.ParseBundle([]byte(`[{"name":"A","url":"https://a"}]`))
	require.NoError(t, err)

	var perr *domain.PersistenceError
	require.ErrorAs(t, f.store.ImportBundle(ctx, b), &perr)
	assert.True(t, f.store.Dirty().Global)
	assert.Len(t, f.store.Filter(Query{Text: "https://a"}), 1)
}

func TestExport(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "root", true)

	data, err := json.Marshal(f.store.Export())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.EqualValues(t, 2, out["version"])
	assert.Equal(t, "2026-03-01T10:00:00Z", out["exported_at"])
	assert.Len(t, out["globalLinks"], 2)

	personal, ok := out["personalLinks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, personal, "alice")
	assert.Contains(t, personal, "bob")

	// exported records carry no layer or owner
	first := out["globalLinks"].([]any)[0].(map[string]any)
	assert.NotContains(t, first, "layer")
	assert.NotContains(t, first, "owner")
}

func TestExportRoundTripsThroughImport(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t, seededAdapter(t), "root", true)
	data, err := json.Marshal(src.store.Export())
	require.NoError(t, err)

	dst := newFixture(t, newFakeAdapter(), "root", true)
	b, err := dst.store.ParseBundle(data)
	require.NoError(t, err)
	require.NoError(t, dst.store.ImportBundle(ctx, b))

	assert.Equal(t, src.store.All(), dst.store.All())
}

func TestExportNonAdminOnlyOwnCollection(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "alice", false)

	out := f.store.Export()
	assert.Len(t, out.GlobalLinks, 2)
	assert.Len(t, out.PersonalLinks, 1)
	assert.Contains(t, out.PersonalLinks, "alice")
}
