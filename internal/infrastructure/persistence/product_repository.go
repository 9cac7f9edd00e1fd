package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindPage returns one page of live products, best sellers first
func (r *GormProductRepository) FindPage(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	q := r.liveMatching(ctx, filter.Search).
		Order("sales DESC").
		Order("views DESC").
		Order("created_at DESC")
	if filter.PageSize > 0 {
		q = q.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Count counts live products matching filter.Search
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.liveMatching(ctx, filter.Search).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProductRepository) liveMatching(ctx context.Context, search string) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.ProductModel{}).Where("is_soft_deleted = ?", false)
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(search))+"%")
	}
	return q
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	var model models.ProductModel
	model.FromDomain(product)
	return translateError(conn(ctx, r.db).Save(&model).Error)
}

// IncrementViews adds one to the view counter in a single statement
func (r *GormProductRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Model(&models.ProductModel{}).
		Where("id = ? AND is_soft_deleted = ?", id, false).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementSales adds qty to the sales counter in a single statement
func (r *GormProductRepository) IncrementSales(ctx context.Context, id uuid.UUID, qty int) error {
	result := conn(ctx, r.db).Model(&models.ProductModel{}).
		Where("id = ?", id).
		UpdateColumn("sales", gorm.Expr("sales + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
