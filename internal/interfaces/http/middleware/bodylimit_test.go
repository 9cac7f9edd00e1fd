package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// readAll echoes the body length or 400 when reading fails
func readAll(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.String(http.StatusBadRequest, "limit %d", tooLarge.Limit)
		return
	}
	c.String(http.StatusOK, "%d", len(data))
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		limit    int64
		path     string
		body     string
		declared bool
		status   int
		reply    string
	}{
		{"within limit", 16, "/api/v1/brands", `{"name":"Acme"}`, true, http.StatusOK, "15"},
		{"declared too large", 16, "/api/v1/brands", strings.Repeat("x", 40), true, http.StatusRequestEntityTooLarge, ""},
		{"streamed too large", 16, "/api/v1/brands", strings.Repeat("x", 40), false, http.StatusBadRequest, "limit 16"},
		{"exempt prefix", 16, "/images/products/a.png", strings.Repeat("x", 40), true, http.StatusOK, "40"},
		{"disabled", 0, "/api/v1/brands", strings.Repeat("x", 40), true, http.StatusOK, "40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(BodyLimit(tt.limit, "/images/"))
			engine.Any("/*path", readAll)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			if !tt.declared {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.reply != "" {
				assert.Equal(t, tt.reply, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
			}
		})
	}
}
