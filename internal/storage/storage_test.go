package storage

import (
	"context"
	"errors"
	"testing"
)

func TestUserKey(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected string
		wantErr  bool
	}{
		{name: "simple", username: "alice", expected: "users/alice"},
		{name: "email like", username: "bob.smith@corp", expected: "users/bob.smith@corp"},
		{name: "empty", username: "", wantErr: true},
		{name: "dot dot", username: "..", wantErr: true},
		{name: "path separator", username: "a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserKey(tt.username)
			if tt.wantErr {
				if err == nil {
					t.Errorf("UserKey(%q) should fail", tt.username)
				}
				return
			}
			if err != nil {
				t.Fatalf("UserKey(%q) error = %v", tt.username, err)
			}
			if got != tt.expected {
				t.Errorf("UserKey(%q) = %q, want %q", tt.username, got, tt.expected)
			}
		})
	}
}

func TestNamespacedCacheIsolation(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryCache()
	alice := ForUser(base, "alice")
	bob := ForUser(base, "bob")

	if err := alice.Set(ctx, CacheKeyPersonal, "[1]"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok := bob.Get(ctx, CacheKeyPersonal); ok {
		t.Error("bob should not see alice's cached personal links")
	}
	if v, ok := alice.Get(ctx, CacheKeyPersonal); !ok || v != "[1]" {
		t.Errorf("alice Get() = %q, %v, want [1], true", v, ok)
	}
	if base.Len() != 1 {
		t.Errorf("Len() = %d, want 1", base.Len())
	}
}

func TestMemoryAdapterReadMissing(t *testing.T) {
	m := NewMemoryAdapter()
	if _, err := m.Read(context.Background(), KeyGlobal); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryAdapterCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAdapter()
	data := []byte(`{"a":1}`)
	if err := m.Write(ctx, KeyGlobal, data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data[0] = 'X'

	got, err := m.Read(ctx, KeyGlobal)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Read() = %s, caller mutation leaked into adapter", got)
	}
}
