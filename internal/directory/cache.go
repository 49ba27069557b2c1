package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "directory:version"

// ContactCache is a versioned Redis cache for contact batches. A nil cache
// or nil client degrades to calling the loader directly.
type ContactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContactCache instantiates the cache helper.
func NewContactCache(client *redis.Client, ttl time.Duration) *ContactCache {
	return &ContactCache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *ContactCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a cache key carrying the current version, so a Bump
// orphans every older key at once.
func (c *ContactCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchContacts loads a cached contact batch or populates it via the loader.
func (c *ContactCache) FetchContacts(ctx context.Context, key string, loader func(context.Context) (map[int64]Contact, error)) (map[int64]Contact, error) {
	if loader == nil {
		return nil, errors.New("directory: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var contacts map[int64]Contact
		if err := json.Unmarshal(payload, &contacts); err == nil {
			return contacts, nil
		}
		// Corrupt payload falls through to a reload.
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	contacts, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(contacts)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// Bump invalidates the cache by incrementing the global version.
func (c *ContactCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
