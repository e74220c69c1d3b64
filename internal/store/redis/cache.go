package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auramark/internal/metadata"
)

// DefaultMetadataTTL is how long scraped page metadata is reused.
const DefaultMetadataTTL = 24 * time.Hour

// CacheMetadata stores the scraped metadata of url.
func (s *Store) CacheMetadata(ctx context.Context, url string, meta metadata.Metadata, ttl time.Duration) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := s.client.Set(ctx, MetadataKey(url), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache metadata: %w", err)
	}
	return nil
}

// CachedMetadata returns the cached metadata of url; ok is false on a miss.
func (s *Store) CachedMetadata(ctx context.Context, url string) (meta metadata.Metadata, ok bool, err error) {
	data, err := s.client.Get(ctx, MetadataKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return meta, false, nil // Cache miss
		}
		return meta, false, fmt.Errorf("failed to get cached metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, false, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return meta, true, nil
}

// FlushMetadata removes all cached metadata.
func (s *Store) FlushMetadata(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixMetadata+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete metadata key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush metadata: %w", err)
	}
	return nil
}
