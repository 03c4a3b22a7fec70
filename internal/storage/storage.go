// Package storage defines how the link store reaches its persisted documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Adapter.Read when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Adapter reads and writes named JSON blobs. A Write either replaces the
// whole blob or fails; callers never observe partial writes.
type Adapter interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Name() string
}

// Cache is the non-authoritative degraded-mode store. It only ever holds the
// current user's last known good arrays.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

const (
	// KeyGlobal is the global collection document.
	KeyGlobal = "global"
	// KeyUserList is the registry of users owning a personal collection.
	KeyUserList = "userlist"
	// KeyPrefixUser prefixes personal collection documents.
	KeyPrefixUser = "users/"

	// CacheKeyGlobal and CacheKeyPersonal are the two degraded-mode keys.
	CacheKeyGlobal   = "linkdash.global.v2"
	CacheKeyPersonal = "linkdash.personal.v2"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._@-]+$`)

// ValidUsername reports whether name can safely be used as a key segment.
func ValidUsername(name string) bool {
	return usernameRe.MatchString(name) && name != "." && name != ".."
}

// UserKey returns the key of username's personal collection.
func UserKey(username string) (string, error) {
	if !ValidUsername(username) {
		return "", fmt.Errorf("invalid username: %q", username)
	}
	return KeyPrefixUser + username, nil
}
