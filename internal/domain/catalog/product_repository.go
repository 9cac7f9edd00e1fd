package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID, including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindPage returns live products whose name contains filter.Search
	// (case-insensitive), best sellers first, then most viewed
	FindPage(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts live products matching filter.Search
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// IncrementViews atomically adds one to the view counter.
	// Returns shared.ErrNotFound when no live product has the id.
	IncrementViews(ctx context.Context, id uuid.UUID) error

	// IncrementSales atomically adds qty to the sales counter.
	// Returns shared.ErrNotFound when the product does not exist.
	IncrementSales(ctx context.Context, id uuid.UUID, qty int) error
}
