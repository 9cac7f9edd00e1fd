package cache

import (
	"fmt"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CategoryTreeCacheFactory creates category tree caches based on configuration
type CategoryTreeCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*CategoryTreeCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *CategoryTreeCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *CategoryTreeCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCategoryTreeCacheFactory creates a new factory
func NewCategoryTreeCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...FactoryOption) *CategoryTreeCacheFactory {
	f := &CategoryTreeCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cacheCfg.AllowInMemoryFallback,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *CategoryTreeCacheFactory) CreateRedisCache() (*RedisCategoryTreeCache, error) {
	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis category tree cache: %w", err)
	}
	return NewRedisCategoryTreeCache(client, f.cacheConfig.KeyPrefix, f.cacheConfig.TTL), nil
}

// CreateCache returns nil when caching is disabled. Otherwise it tries Redis
// first and falls back to memory if allowed.
func (f *CategoryTreeCacheFactory) CreateCache() (catalogapp.CategoryTreeCache, error) {
	if !f.cacheConfig.Enabled {
		f.logger.Info("category tree cache disabled")
		return nil, nil
	}

	redisCache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis category tree cache")
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for category tree cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory category tree cache. "+
		"Category edits on other instances are visible only after the TTL.",
		zap.Error(err),
	)
	return NewInMemoryCategoryTreeCache(f.cacheConfig.TTL), nil
}
