package linkstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
	"github.com/MrSnakeDoc/linkdash/internal/identity"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

var (
	testNow        = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	errDenied      = errors.New("permission denied")
	errUnreachable = errors.New("storage unreachable")
)

// fakeAdapter is a memory adapter that can refuse reads and writes per key.
type fakeAdapter struct {
	*storage.MemoryAdapter

	mu        sync.Mutex
	denyWrite map[string]bool
	failRead  map[string]bool
	writes    []string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		MemoryAdapter: storage.NewMemoryAdapter(),
		denyWrite:     make(map[string]bool),
		failRead:      make(map[string]bool),
	}
}

func (f *fakeAdapter) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failRead[key]
	f.mu.Unlock()
	if fail {
		return nil, errUnreachable
	}
	return f.MemoryAdapter.Read(ctx, key)
}

func (f *fakeAdapter) Write(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	deny := f.denyWrite[key]
	f.writes = append(f.writes, key)
	f.mu.Unlock()
	if deny {
		return errDenied
	}
	return f.MemoryAdapter.Write(ctx, key, data)
}

func (f *fakeAdapter) deny(key string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denyWrite[key] = on
}

func (f *fakeAdapter) breakReads(key string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRead[key] = on
}

func (f *fakeAdapter) writtenKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeAdapter) resetWrites() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
}

// seed stores value as JSON under key.
func seed(t *testing.T, a storage.Adapter, key string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, a.Write(context.Background(), key, data))
}

func doc(links ...map[string]any) map[string]any {
	if links == nil {
		links = []map[string]any{}
	}
	return map[string]any{"version": 2, "updated_at": "2026-01-01T00:00:00Z", "links": links}
}

func rec(id, name, url, group string) map[string]any {
	return map[string]any{"id": id, "name": name, "url": url, "group": group}
}

// storedLinks decodes the collection persisted under key.
func storedLinks(t *testing.T, a storage.Adapter, key string) []domain.Link {
	t.Helper()
	data, err := a.Read(context.Background(), key)
	require.NoError(t, err)

	var d struct {
		Version int           `json:"version"`
		Links   []domain.Link `json:"links"`
	}
	require.NoError(t, json.Unmarshal(data, &d))
	require.Equal(t, DocumentVersion, d.Version)
	return d.Links
}

func storedRegistry(t *testing.T, a storage.Adapter) []string {
	t.Helper()
	data, err := a.Read(context.Background(), storage.KeyUserList)
	require.NoError(t, err)

	var users []string
	require.NoError(t, json.Unmarshal(data, &users))
	return users
}

type fixture struct {
	adapter *fakeAdapter
	cache   *storage.MemoryCache
	oracle  *identity.Static
	store   *Store
}

// newFixture builds a loaded store for user.
func newFixture(t *testing.T, adapter *fakeAdapter, user string, admin bool) *fixture {
	t.Helper()
	f := &fixture{
		adapter: adapter,
		cache:   storage.NewMemoryCache(),
		oracle:  identity.NewStatic(user, admin),
	}
	f.store = New(Options{
		Adapter: adapter,
		Cache:   storage.ForUser(f.cache, user),
		Oracle:  f.oracle,
		Clock:   func() time.Time { return testNow },
	})
	f.store.LoadAll(context.Background())
	return f
}

func linkIDs(links []domain.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.ID
	}
	return out
}
