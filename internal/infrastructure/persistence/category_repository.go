package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns the categories selected by query in creation order.
// The order is what BuildCategoryTree keeps for siblings.
func (r *GormCategoryRepository) FindAll(ctx context.Context, query catalog.CategoryQuery) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	q := conn(ctx, r.db).Where("is_soft_deleted = ?", query.Deleted)
	if query.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// ExistsByNameOrSlug checks live categories for a name or slug collision
func (r *GormCategoryRepository) ExistsByNameOrSlug(ctx context.Context, name, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := conn(ctx, r.db).Model(&models.CategoryModel{}).
		Where("is_soft_deleted = ?", false).
		Where("(LOWER(name) = LOWER(?) OR slug = ?)", name, slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasActiveChildren checks whether any live category points at id
func (r *GormCategoryRepository) HasActiveChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.CategoryModel{}).
		Where("parent_id = ? AND is_soft_deleted = ?", id, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := models.CategoryModelFromDomain(category)
	return translateError(conn(ctx, r.db).Save(model).Error)
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
