package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImageWriter struct {
	err  error
	keys []string
}

func (s *stubImageWriter) Put(_ context.Context, key string, body io.Reader, _ int64) error {
	s.keys = append(s.keys, key)
	_, _ = io.Copy(io.Discard, body)
	return s.err
}

func imageEngine(store ImageWriter, maxBytes int64) *gin.Engine {
	engine := gin.New()
	engine.PUT("/images/*filepath", NewImageHandler(store, maxBytes).Upload)
	return engine
}

func putImage(engine *gin.Engine, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestImageHandler_UploadToLocalStorage(t *testing.T) {
	store, err := storage.NewLocalObjectStorage(t.TempDir(), "http://localhost:8080/images")
	require.NoError(t, err)
	engine := imageEngine(store, 0)

	w := putImage(engine, "/images/products/2024/kettle.png", "image/png", []byte("png-bytes"))
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	got, err := os.ReadFile(filepath.Join(store.Root(), "products", "2024", "kettle.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), got)
}

func TestImageHandler_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		body        []byte
		status      int
	}{
		{"outside products", "/images/avatars/me.png", "image/png", []byte("x"), http.StatusBadRequest},
		{"not an image", "/images/products/notes.txt", "text/plain", []byte("x"), http.StatusBadRequest},
		{"no content type", "/images/products/a.png", "", []byte("x"), http.StatusBadRequest},
		{"declared too large", "/images/products/big.png", "image/png", bytes.Repeat([]byte("x"), 32), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubImageWriter{}
			w := putImage(imageEngine(store, 16), tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, store.keys, "nothing reaches storage")
		})
	}
}

func TestImageHandler_StorageErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"streamed body over the limit", storage.ErrObjectTooLarge, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"key escapes the root", storage.ErrInvalidKey, http.StatusBadRequest, "ERR_BAD_REQUEST"},
		{"disk failure", errors.New("no space left on device"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubImageWriter{err: tt.err}
			w := putImage(imageEngine(store, 0), "/images/products/a.jpg", "image/jpeg", []byte("jpeg"))
			assert.Equal(t, tt.code, errorCode(t, w, tt.status))
			assert.Equal(t, []string{"products/a.jpg"}, store.keys)
		})
	}
}
