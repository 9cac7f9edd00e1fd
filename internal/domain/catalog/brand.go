package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Brand is the manufacturer or label a product is sold under
type Brand struct {
	shared.BaseAggregateRoot
	Name      string
	Slug      string
	Lifecycle shared.Lifecycle
}

// NewBrand creates a new brand
func NewBrand(name string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot exceed 100 characters")
	}
	return &Brand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              shared.Slugify(name),
	}, nil
}

// SoftDelete marks the brand deleted by the given user
func (b *Brand) SoftDelete(by uuid.UUID, at time.Time) error {
	lifecycle, err := b.Lifecycle.Delete(at, by)
	if err != nil {
		return err
	}
	b.Lifecycle = lifecycle
	b.Touch(at)
	return nil
}

// IsDeleted returns true if the brand has been soft deleted
func (b *Brand) IsDeleted() bool {
	return b.Lifecycle.IsDeleted()
}

// BrandRepository defines the interface for brand persistence
type BrandRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	// FindActive returns all brands that are not soft deleted, ordered by name
	FindActive(ctx context.Context) ([]Brand, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, brand *Brand) error
}
