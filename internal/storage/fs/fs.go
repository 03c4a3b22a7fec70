// Package fs stores each blob as a JSON file below a root directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Adapter maps key "users/alice" to <root>/users/alice.json.
type Adapter struct {
	root string
}

// New creates a file adapter rooted at dir. The directory is created lazily
// on the first write.
func New(dir string) *Adapter {
	return &Adapter{root: dir}
}

func (a *Adapter) Name() string { return "file" }

// Root returns the storage directory.
func (a *Adapter) Root() string { return a.root }

func (a *Adapter) path(key string) string {
	return filepath.Join(a.root, filepath.FromSlash(key)+".json")
}

func (a *Adapter) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(a.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the file atomically: temp file, fsync, rename.
func (a *Adapter) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := a.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".linkdash-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to %s %s: %w", op, key, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}
