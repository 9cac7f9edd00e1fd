package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
)

var _ catalogapp.CategoryTreeCache = (*RedisCategoryTreeCache)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCategoryTreeCache stores rendered category trees in Redis, one key per
// audience and generation. Invalidate increments the generation counter, so
// trees stored under an older generation are never read again and expire on
// their TTL. Suitable when several instances serve the same catalog.
type RedisCategoryTreeCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisCategoryTreeCache creates a cache on an existing client
func NewRedisCategoryTreeCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCategoryTreeCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCategoryTreeCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get returns the cached tree for the audience
func (c *RedisCategoryTreeCache) Get(ctx context.Context, audience catalogapp.Audience) ([]catalog.CategoryTreeNode, int64, bool, error) {
	generation, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("failed to read category tree generation: %w", err)
	}

	data, err := c.client.Get(ctx, c.key(audience, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read category tree: %w", err)
	}

	var tree []catalog.CategoryTreeNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, 0, false, fmt.Errorf("failed to decode category tree: %w", err)
	}
	return tree, generation, true, nil
}

// Set stores the tree under the generation it was built in, with the configured TTL
func (c *RedisCategoryTreeCache) Set(ctx context.Context, audience catalogapp.Audience, generation int64, tree []catalog.CategoryTreeNode) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode category tree: %w", err)
	}
	if err := c.client.Set(ctx, c.key(audience, generation), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write category tree: %w", err)
	}
	return nil
}

// Invalidate starts a new generation, retiring the trees of every audience
func (c *RedisCategoryTreeCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate category tree: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (c *RedisCategoryTreeCache) Close() error {
	return c.client.Close()
}

func (c *RedisCategoryTreeCache) generationKey() string {
	return c.keyPrefix + "generation"
}

func (c *RedisCategoryTreeCache) key(audience catalogapp.Audience, generation int64) string {
	return c.keyPrefix + string(audience) + ":" + strconv.FormatInt(generation, 10)
}
