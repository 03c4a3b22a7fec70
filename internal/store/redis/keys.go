package redis

import "fmt"

const (
	// KeyPrefixBlob is the prefix for persisted collection documents
	KeyPrefixBlob = "linkdash:blob:"
	// KeyPrefixCache is the prefix for degraded-mode cache entries
	KeyPrefixCache = "linkdash:cache:"
)

// BlobKey returns the Redis key for a storage key
func BlobKey(key string) string {
	return KeyPrefixBlob + key
}

// CacheKey returns the Redis key for a cache entry
func CacheKey(key string) string {
	return KeyPrefixCache + key
}

// ExtractBlobKey extracts the storage key from a Redis key
func ExtractBlobKey(key string) (string, error) {
	if len(key) <= len(KeyPrefixBlob) || key[:len(KeyPrefixBlob)] != KeyPrefixBlob {
		return "", fmt.Errorf("invalid blob key: %s", key)
	}
	return key[len(KeyPrefixBlob):], nil
}
