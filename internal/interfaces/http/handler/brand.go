package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// BrandHandler handles brand endpoints
type BrandHandler struct {
	BaseHandler
	brandService *catalogapp.BrandService
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brandService *catalogapp.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

// List returns every live brand
//
//	GET /brands
func (h *BrandHandler) List(c *gin.Context) {
	brands, err := h.brandService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brands)
}

// Create creates a brand
//
//	POST /brands/admin
func (h *BrandHandler) Create(c *gin.Context) {
	var req catalogapp.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	brand, err := h.brandService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, brand)
}

// Delete soft-deletes a brand
//
//	DELETE /brands/admin/:id
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid brand ID format")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.brandService.Delete(c.Request.Context(), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
