package linkstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/identity"
)

func newOracle(user string, admin bool) *identity.Static {
	return identity.NewStatic(user, admin)
}

func TestCanEdit(t *testing.T) {
	global := domain.Link{ID: "g", Layer: domain.LayerGlobal}
	own := domain.Link{ID: "a", Layer: domain.LayerPersonal, Owner: "alice"}
	other := domain.Link{ID: "b", Layer: domain.LayerPersonal, Owner: "bob"}

	user := New(Options{Oracle: newOracle("alice", false)})
	assert.False(t, user.CanEdit(global))
	assert.True(t, user.CanEdit(own))
	assert.False(t, user.CanEdit(other))

	admin := New(Options{Oracle: newOracle("root", true)})
	for _, l := range []domain.Link{global, own, other} {
		assert.True(t, admin.CanEdit(l))
	}
}

func TestFilterAndGroups(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "root", true)

	got := f.store.Filter(Query{Text: "bob"})
	assert.Equal(t, []string{"b1"}, linkIDs(got), "owner is part of the searchable text")

	got = f.store.Filter(Query{Group: "docs"})
	assert.Equal(t, []string{"a1"}, linkIDs(got))

	assert.Equal(t, []string{"Docs", "General", "Monitoring"}, f.store.Groups())
}

func TestWatchLoadsRegistryWhenAdminGained(t *testing.T) {
	f := newFixture(t, seededAdapter(t), "alice", false)
	require.Equal(t, []string{"g1", "g2", "a1"}, linkIDs(f.store.All()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		f.store.Watch(ctx)
		close(done)
	}()

	// Watch subscribes asynchronously; keep toggling until it reacts.
	require.Eventually(t, func() bool {
		f.oracle.SetAdmin(false)
		f.oracle.SetAdmin(true)
		_, ok := f.store.Find("b1")
		return ok
	}, 2*time.Second, 20*time.Millisecond)

	f.oracle.SetAdmin(false)
	require.Eventually(t, func() bool {
		_, ok := f.store.Find("b1")
		return !ok
	}, 2*time.Second, 20*time.Millisecond, "revoked rights hide other users' links")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
