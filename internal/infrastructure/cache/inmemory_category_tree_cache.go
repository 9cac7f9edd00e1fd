package cache

import (
	"context"
	"sync"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
)

const (
	// DefaultKeyPrefix namespaces category tree keys
	DefaultKeyPrefix = "storefront:category-tree:"
	// DefaultTTL bounds how long a tree may be served after an out-of-band change
	DefaultTTL = 10 * time.Minute
)

var _ catalogapp.CategoryTreeCache = (*InMemoryCategoryTreeCache)(nil)

type treeEntry struct {
	tree       []catalog.CategoryTreeNode
	generation int64
	expiresAt  time.Time
}

// InMemoryCategoryTreeCache keeps category trees in process memory.
// Instances do not share state, so writes on one instance are only
// seen by others once their entries expire.
type InMemoryCategoryTreeCache struct {
	mu         sync.RWMutex
	entries    map[catalogapp.Audience]treeEntry
	generation int64
	ttl        time.Duration
	now        func() time.Time
}

// NewInMemoryCategoryTreeCache creates an in-memory cache
func NewInMemoryCategoryTreeCache(ttl time.Duration) *InMemoryCategoryTreeCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryCategoryTreeCache{
		entries: make(map[catalogapp.Audience]treeEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached tree for the audience if it has not expired
func (c *InMemoryCategoryTreeCache) Get(_ context.Context, audience catalogapp.Audience) ([]catalog.CategoryTreeNode, int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[audience]
	if !ok || e.generation != c.generation || !c.now().Before(e.expiresAt) {
		return nil, c.generation, false, nil
	}
	return e.tree, c.generation, true, nil
}

// Set stores the tree for the audience unless it was built before the last Invalidate
func (c *InMemoryCategoryTreeCache) Set(_ context.Context, audience catalogapp.Audience, generation int64, tree []catalog.CategoryTreeNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return nil
	}
	c.entries[audience] = treeEntry{tree: tree, generation: generation, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops every cached tree and starts a new generation
func (c *InMemoryCategoryTreeCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	clear(c.entries)
	return nil
}
