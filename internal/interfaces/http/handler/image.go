package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DefaultMaxImageBytes caps a product image upload
const DefaultMaxImageBytes int64 = 5 << 20

// ImageWriter stores an uploaded object under a key
type ImageWriter interface {
	Put(ctx context.Context, storageKey string, body io.Reader, maxBytes int64) error
}

// ImageHandler accepts product image uploads when images live on local disk.
// With S3 the upload URL is presigned and this handler is not mounted.
type ImageHandler struct {
	BaseHandler
	store    ImageWriter
	maxBytes int64
}

// NewImageHandler creates a new ImageHandler. maxBytes <= 0 uses DefaultMaxImageBytes.
func NewImageHandler(store ImageWriter, maxBytes int64) *ImageHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageHandler{store: store, maxBytes: maxBytes}
}

// Upload writes the request body to the key in the path
//
//	PUT /images/*filepath
func (h *ImageHandler) Upload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")
	if !strings.HasPrefix(key, "products/") {
		h.BadRequest(c, "Invalid image key")
		return
	}
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		h.BadRequest(c, "Content-Type must be an image type")
		return
	}
	if c.Request.ContentLength > h.maxBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image is too large")
		return
	}

	err = h.store.Put(c.Request.Context(), key, c.Request.Body, h.maxBytes)
	switch {
	case err == nil:
		h.NoContent(c)
	case errors.Is(err, storage.ErrObjectTooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image is too large")
	case errors.Is(err, storage.ErrInvalidKey):
		h.BadRequest(c, "Invalid image key")
	default:
		logger.GetGinLogger(c).Error("Image upload failed", zap.String("key", key), zap.Error(err))
		h.InternalError(c, "Image could not be stored")
	}
}
