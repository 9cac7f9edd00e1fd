package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a sellable item of the catalog
type Product struct {
	shared.BaseAggregateRoot
	Name         string
	Slug         string
	Image        string // object storage key
	Description  string
	BrandID      uuid.UUID
	CategoryID   uuid.UUID
	Price        decimal.Decimal
	CountInStock int
	Views        int64
	Sales        int64
	Lifecycle    shared.Lifecycle
}

// ProductPatch carries the fields of a partial product update.
// Nil fields are left unchanged.
type ProductPatch struct {
	Name         *string
	Description  *string
	Image        *string
	BrandID      *uuid.UUID
	CategoryID   *uuid.UUID
	Price        *decimal.Decimal
	CountInStock *int
}

// NewProduct creates a new product
func NewProduct(
	name, description, image string,
	brandID, categoryID uuid.UUID,
	price decimal.Decimal,
	countInStock int,
) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Product description is required")
	}
	if strings.TrimSpace(image) == "" {
		return nil, shared.NewDomainError("IMAGE_REQUIRED", "Product image is required")
	}
	if brandID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRAND", "Product brand is required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(countInStock); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              shared.Slugify(name),
		Image:             image,
		Description:       description,
		BrandID:           brandID,
		CategoryID:        categoryID,
		Price:             price,
		CountInStock:      countInStock,
	}, nil
}

// Apply updates the product with the non-nil fields of the patch.
// The slug follows the name.
func (p *Product) Apply(patch ProductPatch) error {
	if p.IsDeleted() {
		return shared.NewDomainError("PRODUCT_DELETED", "Cannot edit a deleted product")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateProductName(name); err != nil {
			return err
		}
		p.Name = name
		p.Slug = shared.Slugify(name)
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		p.Description = *patch.Description
	}
	if patch.Image != nil && strings.TrimSpace(*patch.Image) != "" {
		p.Image = *patch.Image
	}
	if patch.BrandID != nil && *patch.BrandID != uuid.Nil {
		p.BrandID = *patch.BrandID
	}
	if patch.CategoryID != nil && *patch.CategoryID != uuid.Nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return err
		}
		p.Price = *patch.Price
	}
	if patch.CountInStock != nil {
		if err := validateStock(*patch.CountInStock); err != nil {
			return err
		}
		p.CountInStock = *patch.CountInStock
	}

	p.Touch(time.Now())
	return nil
}

// SoftDelete marks the product deleted by the given user
func (p *Product) SoftDelete(by uuid.UUID, at time.Time) error {
	lifecycle, err := p.Lifecycle.Delete(at, by)
	if err != nil {
		return err
	}
	p.Lifecycle = lifecycle
	p.Touch(at)
	return nil
}

// IsDeleted returns true if the product has been soft deleted
func (p *Product) IsDeleted() bool {
	return p.Lifecycle.IsDeleted()
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	return nil
}

func validateStock(count int) error {
	if count < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock count cannot be negative")
	}
	return nil
}
