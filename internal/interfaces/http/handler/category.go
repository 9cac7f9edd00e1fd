package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CategoryHandler handles category-related API endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// Tree returns the category forest.
// Admins also see inactive categories; everyone else only active ones.
//
//	GET /categories
func (h *CategoryHandler) Tree(c *gin.Context) {
	audience := catalogapp.AudiencePublic
	if middleware.IsAdmin(c) {
		audience = catalogapp.AudienceAdmin
	}

	tree, err := h.categoryService.GetTree(c.Request.Context(), audience)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// ListDeleted returns the soft-deleted categories as a flat list
//
//	GET /categories/admin/deleted
func (h *CategoryHandler) ListDeleted(c *gin.Context) {
	categories, err := h.categoryService.ListDeleted(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Create creates a category
//
//	POST /categories/admin
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update renames a category and optionally toggles its active flag
//
//	PATCH /categories/admin/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	var req catalogapp.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete soft-deletes a category and returns it with its deletion record
//
//	DELETE /categories/admin/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	category, err := h.categoryService.Delete(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}
