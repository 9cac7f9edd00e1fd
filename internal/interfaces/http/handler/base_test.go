package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// setJWTContext simulates an authenticated request without a signed token
func setJWTContext(c *gin.Context, userID uuid.UUID, role string) {
	c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: userID.String(), Role: role})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequester(t *testing.T) {
	userID := uuid.New()

	t.Run("anonymous", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		_, err := getRequester(c)
		assert.Error(t, err)
	})

	t.Run("customer", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		setJWTContext(c, userID, "customer")
		r, err := getRequester(c)
		require.NoError(t, err)
		assert.Equal(t, userID, r.UserID)
		assert.False(t, r.IsAdmin)
	})

	t.Run("admin", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		setJWTContext(c, userID, "admin")
		r, err := getRequester(c)
		require.NoError(t, err)
		assert.True(t, r.IsAdmin)
	})
}

func TestBaseHandler_Envelopes(t *testing.T) {
	tests := []struct {
		name    string
		write   func(*BaseHandler, *gin.Context)
		status  int
		success bool
		code    string
	}{
		{"Success", func(h *BaseHandler, c *gin.Context) { h.Success(c, gin.H{"id": "1"}) }, http.StatusOK, true, ""},
		{"Created", func(h *BaseHandler, c *gin.Context) { h.Created(c, gin.H{"id": "1"}) }, http.StatusCreated, true, ""},
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "Invalid ID") }, http.StatusBadRequest, false, dto.ErrCodeBadRequest},
		{"Unauthorized", func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "Login required") }, http.StatusUnauthorized, false, dto.ErrCodeUnauthorized},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "Server error") }, http.StatusInternalServerError, false, dto.ErrCodeInternal},
		{"Error", func(h *BaseHandler, c *gin.Context) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image is too large")
		}, http.StatusRequestEntityTooLarge, false, dto.ErrCodeRequestTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-55")

			tt.write(&BaseHandler{}, c)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, tt.success, resp.Success)
			if tt.success {
				assert.Nil(t, resp.Error)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-55", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_NoContent(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.DELETE("/brands/:id", func(c *gin.Context) { h.NoContent(c) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/brands/1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	engine := gin.New()
	engine.GET("/orders/:id", func(c *gin.Context) {
		parsed, ok := parseID(c)
		if !ok {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, parsed.String())
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+id.String(), nil))
	assert.Equal(t, id.String(), w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"NOT_FOUND", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"ALREADY_EXISTS", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"INVALID_INPUT", shared.NewDomainError("INVALID_INPUT", "Bad input"), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"FORBIDDEN", shared.NewDomainError("FORBIDDEN", "Not yours"), http.StatusForbidden, dto.ErrCodeForbidden},
		{"INVALID_STATE", shared.NewDomainError("INVALID_STATE", "Not now"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"INSUFFICIENT_STOCK", shared.NewDomainError("INSUFFICIENT_STOCK", "Only 2 left"), http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"CATEGORY_NOT_FOUND", shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found"), http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"HAS_ACTIVE_CHILDREN", shared.NewDomainError("HAS_ACTIVE_CHILDREN", "Category has active subcategories"), http.StatusConflict, "HAS_ACTIVE_CHILDREN"},
		{"INVALID_NAME", shared.NewDomainError("INVALID_NAME", "Name is required"), http.StatusBadRequest, "INVALID_NAME"},
		{"wrapped", fmt.Errorf("additional context: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"standard error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)
			c.Set(middleware.RequestIDKey, "domain-err-req")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "domain-err-req", resp.Error.RequestID)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		h.HandleError(c, nil)

		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("unknown errors are not leaked", func(t *testing.T) {
		h := &BaseHandler{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		h.HandleError(c, fmt.Errorf("pq: connection refused"))

		assert.Equal(t, "An unexpected error occurred", decodeResponse(t, w).Error.Message)
	})
}
