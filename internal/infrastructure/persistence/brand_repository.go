package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBrandRepository implements BrandRepository using GORM
type GormBrandRepository struct {
	db *gorm.DB
}

// NewGormBrandRepository creates a new GormBrandRepository
func NewGormBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// FindByID finds a brand by its ID
func (r *GormBrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Brand, error) {
	var model models.BrandModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindActive returns live brands ordered by name
func (r *GormBrandRepository) FindActive(ctx context.Context) ([]catalog.Brand, error) {
	var rows []models.BrandModel
	if err := conn(ctx, r.db).
		Where("is_soft_deleted = ?", false).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	brands := make([]catalog.Brand, len(rows))
	for i := range rows {
		brands[i] = *rows[i].ToDomain()
	}
	return brands, nil
}

// ExistsByName checks whether a live brand already uses the name
func (r *GormBrandRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.BrandModel{}).
		Where("LOWER(name) = LOWER(?) AND is_soft_deleted = ?", name, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a brand
func (r *GormBrandRepository) Save(ctx context.Context, brand *catalog.Brand) error {
	var model models.BrandModel
	model.FromDomain(brand)
	return translateError(conn(ctx, r.db).Save(&model).Error)
}

var _ catalog.BrandRepository = (*GormBrandRepository)(nil)
