package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

var (
	_ storage.Adapter = (*Store)(nil)
	_ storage.Cache   = (*Cache)(nil)
)

// Store persists collection documents as plain Redis strings (no TTL)
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) Name() string { return "redis" }

// Read retrieves a document, storage.ErrNotFound when the key is absent
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, BlobKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Write replaces a document
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, BlobKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored document key
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, KeyPrefixBlob+"*", 0).Iterator()
	for iter.Next(ctx) {
		k, err := ExtractBlobKey(iter.Val())
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan blobs: %w", err)
	}
	return keys, nil
}
