package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxCategoryNameLength is the maximum length of a category name
const MaxCategoryNameLength = 100

// Category is a node of the product category forest.
// A category without a parent is a root.
type Category struct {
	shared.BaseAggregateRoot
	Name      string
	Slug      string
	ParentID  *uuid.UUID
	IsActive  bool
	Lifecycle shared.Lifecycle
}

// NewCategory creates a new active category, optionally under a parent
func NewCategory(name string, parentID *uuid.UUID) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              shared.Slugify(name),
		ParentID:          parentID,
		IsActive:          true,
		Lifecycle:         shared.ActiveLifecycle(),
	}, nil
}

// Rename changes the category name and recomputes its slug
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if c.IsDeleted() {
		return shared.NewDomainError("CATEGORY_DELETED", "Cannot edit a deleted category")
	}

	c.Name = name
	c.Slug = shared.Slugify(name)
	c.Touch(time.Now())
	return nil
}

// SetActive toggles the visibility of the category for non-privileged callers
func (c *Category) SetActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.Touch(time.Now())
}

// SoftDelete marks the category deleted by the given user.
// The record and its children are kept.
func (c *Category) SoftDelete(by uuid.UUID, at time.Time) error {
	lifecycle, err := c.Lifecycle.Delete(at, by)
	if err != nil {
		return err
	}
	c.Lifecycle = lifecycle
	c.Touch(at)
	return nil
}

// IsDeleted returns true if the category has been soft deleted
func (c *Category) IsDeleted() bool {
	return c.Lifecycle.IsDeleted()
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsVisibleToPublic returns true if the category appears in public listings
func (c *Category) IsVisibleToPublic() bool {
	return c.IsActive && !c.IsDeleted()
}

// validateCategoryName validates the category name
func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name is required")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if shared.Slugify(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name must contain at least one letter or digit")
	}
	return nil
}
