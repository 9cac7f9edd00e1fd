package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultProductPageSize is the number of products per listing page
const DefaultProductPageSize = 8

// productImagePrefix is the storage key prefix of product images
const productImagePrefix = "products/"

// imageContentTypes lists the accepted image uploads and their file extensions.
// SVG is excluded because it can carry scripts.
var imageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductServiceConfig holds tuning for ProductService
type ProductServiceConfig struct {
	PageSize          int
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultProductServiceConfig returns the default configuration
func DefaultProductServiceConfig() ProductServiceConfig {
	return ProductServiceConfig{
		PageSize:          DefaultProductPageSize,
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// ProductService handles product catalog operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	brandRepo    catalog.BrandRepository
	storage      ObjectStorage
	config       ProductServiceConfig
	now          func() time.Time
}

// NewProductService creates a new ProductService.
// storage may be nil; image existence checks and URLs are then skipped.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	brandRepo catalog.BrandRepository,
	storage ObjectStorage,
	config ProductServiceConfig,
) *ProductService {
	if config.PageSize <= 0 {
		config.PageSize = DefaultProductPageSize
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		storage:      storage,
		config:       config,
		now:          time.Now,
	}
}

// List returns one page of live products matching the keyword
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*ProductPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query := shared.Filter{
		Page:     page,
		PageSize: s.config.PageSize,
		Search:   strings.TrimSpace(filter.Keyword),
	}

	total, err := s.productRepo.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindPage(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = s.toResponse(ctx, &products[i])
	}
	return &ProductPage{
		Products: items,
		Page:     page,
		Pages:    shared.PageCount(total, s.config.PageSize),
		Total:    total,
	}, nil
}

// GetByID returns a live product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// IncrementViews records one view of a live product
func (s *ProductService) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return err
	}
	return nil
}

// Create creates a product in a live category and brand with an uploaded image
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(
		req.Name, req.Description, req.Image,
		req.BrandID, req.CategoryID,
		req.Price, req.CountInStock,
	)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, &req.CategoryID, &req.BrandID, &req.Image); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// Update applies a partial update to a live product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	var image *string
	if req.Image != nil && *req.Image != product.Image {
		image = req.Image
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.BrandID, image); err != nil {
		return nil, err
	}

	if err := product.Apply(catalog.ProductPatch{
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		BrandID:      req.BrandID,
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		CountInStock: req.CountInStock,
	}); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// Delete soft-deletes a product. Its image stays in storage because past
// orders still show it.
func (s *ProductService) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	product, err := s.findLive(ctx, id)
	if err != nil {
		return err
	}
	if err := product.SoftDelete(deletedBy, s.now()); err != nil {
		return err
	}
	return s.productRepo.Save(ctx, product)
}

// RequestImageUpload reserves a storage key and returns a presigned upload URL for it
func (s *ProductService) RequestImageUpload(ctx context.Context, req RequestImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := imageContentTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", fmt.Sprintf("Content type %q is not an accepted image type", req.ContentType))
	}

	base := shared.Slugify(strings.TrimSuffix(path.Base(req.FileName), path.Ext(req.FileName)))
	if base == "" {
		base = "image"
	}
	key := productImagePrefix + uuid.NewString() + "-" + base + ext

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &ImageUploadResponse{StorageKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

func (s *ProductService) findLive(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	if product.IsDeleted() {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	return product, nil
}

// checkReferences validates the non-nil references of a product write
func (s *ProductService) checkReferences(ctx context.Context, categoryID, brandID *uuid.UUID, image *string) error {
	if categoryID != nil && *categoryID != uuid.Nil {
		category, err := s.categoryRepo.FindByID(ctx, *categoryID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if category == nil || category.IsDeleted() {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
	}

	if brandID != nil && *brandID != uuid.Nil {
		brand, err := s.brandRepo.FindByID(ctx, *brandID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if brand == nil || brand.IsDeleted() {
			return shared.NewDomainError("INVALID_BRAND", "Brand not found")
		}
	}

	if image != nil && s.storage != nil && strings.TrimSpace(*image) != "" {
		if !strings.HasPrefix(*image, productImagePrefix) {
			return shared.NewDomainError("INVALID_IMAGE", "Image must be uploaded through an image upload request")
		}
		exists, err := s.storage.ObjectExists(ctx, *image)
		if err != nil {
			return fmt.Errorf("failed to check image: %w", err)
		}
		if !exists {
			return shared.NewDomainError("INVALID_IMAGE", "Image has not been uploaded")
		}
	}
	return nil
}

func (s *ProductService) toResponse(ctx context.Context, product *catalog.Product) ProductResponse {
	resp := ToProductResponse(product)
	if s.storage == nil || product.Image == "" {
		return resp
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, product.Image, s.config.DownloadURLExpiry)
	if err != nil {
		logger.L(ctx).Warn("Failed to sign product image URL",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		return resp
	}
	resp.ImageURL = url
	return resp
}
