// Package app builds the long-lived handles shared by the server and the
// operator CLI from a loaded configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/cache"
	rediscache "go.pilab.hu/mcportal/cache/redis"
	"go.pilab.hu/mcportal/config"
	"go.pilab.hu/mcportal/internal/federation"
	"go.pilab.hu/mcportal/internal/memstore"
	"go.pilab.hu/mcportal/mongodb"
	"go.pilab.hu/mcportal/services"
)

const profileCachePrefix = "mcportal:profile:"

// Storage is an opened repository backend.
type Storage struct {
	Repos  services.RepositoryProvider
	Health func(ctx context.Context) error
	close  func(ctx context.Context)
}

// Close releases the backend connection.
func (s *Storage) Close(ctx context.Context) {
	if s != nil && s.close != nil {
		s.close(ctx)
	}
}

// OpenStorage connects the configured storage backend.
func OpenStorage(ctx context.Context, cfg *config.ServerConfig) (*Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageTypeMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return &Storage{
			Repos:  memstore.New(),
			Health: func(context.Context) error { return nil },
		}, nil

	case config.StorageTypeMongoDB, "":
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		repos, err := mongodb.NewRepositories(ctx, client.DB())
		if err != nil {
			client.Close(ctx)
			return nil, err
		}
		return &Storage{Repos: repos, Health: client.Ping, close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// NewProfileCache picks the identity cache: redis when REDIS_URL is set,
// ttlcache when the TTL is positive, otherwise no caching.
func NewProfileCache(ctx context.Context, cfg *config.ServerConfig) (cache.ProfileCache, error) {
	if cfg.IdentityCacheTTL <= 0 {
		return cache.NoopProfileCache{}, nil
	}
	if cfg.RedisURL == "" {
		return cache.NewMemoryProfileCache(cfg.IdentityCacheTTL), nil
	}

	client, err := rediscache.NewClientFromURL(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return rediscache.NewProfileCache(client, profileCachePrefix, cfg.IdentityCacheTTL), nil
}

// NewIdentityProvider builds the Mojang provider behind profileCache.
func NewIdentityProvider(cfg *config.ServerConfig, profileCache cache.ProfileCache) federation.IdentityProvider {
	mojang := federation.NewMojangProvider(federation.MojangConfig{
		ProfileURL: cfg.MojangProfileURL,
		SessionURL: cfg.MojangSessionURL,
		Timeout:    cfg.MojangTimeout,
	})
	return federation.NewCachingProvider(mojang, profileCache)
}
