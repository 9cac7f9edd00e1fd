package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// BrandService handles brand operations
type BrandService struct {
	brandRepo catalog.BrandRepository
	now       func() time.Time
}

// NewBrandService creates a new BrandService
func NewBrandService(brandRepo catalog.BrandRepository) *BrandService {
	return &BrandService{brandRepo: brandRepo, now: time.Now}
}

// Create creates a brand with a name unique among live brands
func (s *BrandService) Create(ctx context.Context, req CreateBrandRequest) (*BrandResponse, error) {
	brand, err := catalog.NewBrand(req.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.brandRepo.ExistsByName(ctx, brand.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Brand with this name already exists")
	}

	if err := s.brandRepo.Save(ctx, brand); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Brand with this name already exists")
		}
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

// List returns every live brand
func (s *BrandService) List(ctx context.Context) ([]BrandResponse, error) {
	brands, err := s.brandRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]BrandResponse, len(brands))
	for i := range brands {
		resp[i] = ToBrandResponse(&brands[i])
	}
	return resp, nil
}

// Delete soft-deletes a brand. Products keep their brand reference.
func (s *BrandService) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("BRAND_NOT_FOUND", "Brand not found")
		}
		return err
	}
	if brand.IsDeleted() {
		return shared.NewDomainError("BRAND_NOT_FOUND", "Brand not found")
	}

	if err := brand.SoftDelete(deletedBy, s.now()); err != nil {
		return err
	}
	return s.brandRepo.Save(ctx, brand)
}
