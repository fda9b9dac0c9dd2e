package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/cache"
)

// ProfileCache implements cache.ProfileCache on Redis so that several
// instances share identity lookups.
type ProfileCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewProfileCache creates a new Redis backed profile cache.
func NewProfileCache(client *redis.Client, prefix string, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// NewClientFromURL parses a redis:// URL and verifies the connection.
func NewClientFromURL(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *ProfileCache) redisKey(name string) string {
	return fmt.Sprintf("%s:profile:%s", r.prefix, name)
}

// Get retrieves a cached profile. Redis errors are treated as misses.
func (r *ProfileCache) Get(ctx context.Context, name string) (*cache.ProfileEntry, bool) {
	raw, err := r.client.Get(ctx, r.redisKey(name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Ctx(ctx).Warn().Err(err).Str("name", name).Msg("redis profile cache get failed")
		}
		return nil, false
	}

	var entry cache.ProfileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("name", name).Msg("corrupt profile cache entry")
		return nil, false
	}
	return &entry, true
}

// Set stores a profile with the configured TTL.
func (r *ProfileCache) Set(ctx context.Context, name string, entry *cache.ProfileEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := r.client.Set(ctx, r.redisKey(name), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set profile in Redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *ProfileCache) Close() error {
	return r.client.Close()
}

var _ cache.ProfileCache = (*ProfileCache)(nil)
