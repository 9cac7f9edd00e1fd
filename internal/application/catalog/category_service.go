package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CategoryService handles category lifecycle operations and tree listings
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	treeCache    CategoryTreeCache
	now          func() time.Time
}

// NewCategoryService creates a new CategoryService.
// treeCache may be nil, in which case every listing reads the repository.
func NewCategoryService(categoryRepo catalog.CategoryRepository, treeCache CategoryTreeCache) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		treeCache:    treeCache,
		now:          time.Now,
	}
}

// Create creates a new category, optionally under a live parent
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, category, nil); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByID(ctx, *req.ParentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if parent == nil || parent.IsDeleted() {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
		}
	}

	if err := s.save(ctx, category); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug),
	)
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update renames a live category and optionally toggles its active flag
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, category, &category.ID); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		category.SetActive(*req.IsActive)
	}

	if err := s.save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete soft-deletes a category. A category that still has live children
// cannot be deleted; children are never cascaded.
func (s *CategoryService) Delete(ctx context.Context, id, deletedBy uuid.UUID) (*CategoryResponse, error) {
	category, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	hasChildren, err := s.categoryRepo.HasActiveChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	if hasChildren {
		return nil, shared.NewDomainError("HAS_ACTIVE_CHILDREN", "Category has subcategories; delete or move them first")
	}

	if err := category.SoftDelete(deletedBy, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, category); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Category soft deleted",
		zap.String("category_id", category.ID.String()),
		zap.String("deleted_by", deletedBy.String()),
	)
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetTree returns the category forest visible to the audience
func (s *CategoryService) GetTree(ctx context.Context, audience Audience) ([]catalog.CategoryTreeNode, error) {
	var (
		generation int64
		cacheable  bool
	)
	if s.treeCache != nil {
		tree, gen, ok, err := s.treeCache.Get(ctx, audience)
		switch {
		case err != nil:
			logger.L(ctx).Warn("Category tree cache read failed", zap.Error(err))
		case ok:
			return tree, nil
		default:
			generation, cacheable = gen, true
		}
	}

	records, err := s.categoryRepo.FindAll(ctx, catalog.CategoryQuery{
		ActiveOnly: audience != AudienceAdmin,
	})
	if err != nil {
		return nil, err
	}
	tree := catalog.BuildCategoryTree(records, nil)

	if cacheable {
		if err := s.treeCache.Set(ctx, audience, generation, tree); err != nil {
			logger.L(ctx).Warn("Category tree cache write failed", zap.Error(err))
		}
	}
	return tree, nil
}

// ListDeleted returns soft-deleted categories as a flat list
func (s *CategoryService) ListDeleted(ctx context.Context) ([]CategoryResponse, error) {
	records, err := s.categoryRepo.FindAll(ctx, catalog.CategoryQuery{Deleted: true})
	if err != nil {
		return nil, err
	}
	resp := make([]CategoryResponse, len(records))
	for i := range records {
		resp[i] = ToCategoryResponse(&records[i])
	}
	return resp, nil
}

func (s *CategoryService) findLive(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return nil, err
	}
	if category.IsDeleted() {
		return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
	}
	return category, nil
}

func (s *CategoryService) ensureUnique(ctx context.Context, category *catalog.Category, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsByNameOrSlug(ctx, category.Name, category.Slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}
	return nil
}

// save persists the category and drops cached trees. A unique index
// violation from a concurrent writer surfaces as ALREADY_EXISTS.
func (s *CategoryService) save(ctx context.Context, category *catalog.Category) error {
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
		}
		return err
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *CategoryService) invalidateTree(ctx context.Context) {
	if s.treeCache == nil {
		return
	}
	if err := s.treeCache.Invalidate(ctx); err != nil {
		logger.L(ctx).Warn("Category tree cache invalidation failed", zap.Error(err))
	}
}
