package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryQuery narrows a category listing
type CategoryQuery struct {
	// ActiveOnly restricts the result to categories flagged active
	ActiveOnly bool
	// Deleted selects soft-deleted records instead of live ones
	Deleted bool
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID, including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindAll returns categories matching the query in creation order
	FindAll(ctx context.Context, query CategoryQuery) ([]Category, error)

	// ExistsByNameOrSlug checks whether a live category other than excludeID
	// already uses the name or the slug
	ExistsByNameOrSlug(ctx context.Context, name, slug string, excludeID *uuid.UUID) (bool, error)

	// HasActiveChildren checks if a category has any live children
	HasActiveChildren(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error
}
