package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,notblank,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest represents a request to edit a category.
// IsActive is left unchanged when absent.
type UpdateCategoryRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	IsActive *bool  `json:"is_active"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	ParentID      *uuid.UUID `json:"parent_id"`
	IsActive      bool       `json:"is_active"`
	IsSoftDeleted bool       `json:"is_soft_deleted"`
	SoftDeletedAt *time.Time `json:"soft_deleted_at,omitempty"`
	DeletedBy     *uuid.UUID `json:"deleted_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if d, ok := c.Lifecycle.Deletion(); ok {
		at, by := d.At, d.By
		resp.IsSoftDeleted = true
		resp.SoftDeletedAt = &at
		resp.DeletedBy = &by
	}
	return resp
}

// CreateBrandRequest represents a request to create a brand
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
}

// BrandResponse represents a brand in API responses
type BrandResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// ToBrandResponse converts a domain Brand to BrandResponse
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{
		ID:        b.ID,
		Name:      b.Name,
		Slug:      b.Slug,
		CreatedAt: b.CreatedAt,
	}
}

// CreateProductRequest represents a request to create a product.
// Image is the storage key returned by an image upload request.
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,notblank,max=200"`
	Description  string          `json:"description" binding:"required,max=5000"`
	Image        string          `json:"image" binding:"required,max=500"`
	BrandID      uuid.UUID       `json:"brand_id" binding:"required"`
	CategoryID   uuid.UUID       `json:"category_id" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"count_in_stock" binding:"min=0"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=5000"`
	Image        *string          `json:"image" binding:"omitempty,max=500"`
	BrandID      *uuid.UUID       `json:"brand_id"`
	CategoryID   *uuid.UUID       `json:"category_id"`
	Price        *decimal.Decimal `json:"price"`
	CountInStock *int             `json:"count_in_stock" binding:"omitempty,min=0"`
}

// ProductListFilter represents the public product listing query
type ProductListFilter struct {
	Keyword string `form:"q" binding:"max=100"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Image        string          `json:"image"`
	ImageURL     string          `json:"image_url,omitempty"`
	Description  string          `json:"description"`
	BrandID      uuid.UUID       `json:"brand_id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"count_in_stock"`
	Views        int64           `json:"views"`
	Sales        int64           `json:"sales"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Image:        p.Image,
		Description:  p.Description,
		BrandID:      p.BrandID,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		CountInStock: p.CountInStock,
		Views:        p.Views,
		Sales:        p.Sales,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProductPage is one page of the product listing
type ProductPage struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int64             `json:"total"`
}

// RequestImageUploadRequest asks for a presigned product image upload
type RequestImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned upload target
type ImageUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
