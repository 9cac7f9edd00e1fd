package catalog

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
)

// Audience selects which categories a tree listing shows
type Audience string

const (
	// AudiencePublic sees active, non-deleted categories
	AudiencePublic Audience = "public"
	// AudienceAdmin sees every non-deleted category
	AudienceAdmin Audience = "admin"
)

// CategoryTreeCache stores built category trees per audience.
// Every Invalidate starts a new generation; a tree is only stored under the
// generation it was read in, so a tree built before a write never outlives it.
// Implementations live in infrastructure/cache.
type CategoryTreeCache interface {
	// Get returns the cached tree and true on a hit. On a miss it still
	// reports the current generation, to be handed back to Set.
	Get(ctx context.Context, audience Audience) (tree []catalog.CategoryTreeNode, generation int64, ok bool, err error)
	// Set stores the tree built during generation. It is dropped when the
	// cache has been invalidated since.
	Set(ctx context.Context, audience Audience, generation int64, tree []catalog.CategoryTreeNode) error
	// Invalidate drops the trees of every audience
	Invalidate(ctx context.Context) error
}

// ObjectStorage is the object store holding product images.
// Implemented by infrastructure/storage (S3 or local disk).
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	DeleteObject(ctx context.Context, storageKey string) error

	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
