package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.Prefix())
	assert.Empty(t, r.registrars)

	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).Prefix())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("products", "/products")
	g.GET("", reply("list")).
		POST("", reply("create")).
		PUT("/:id/view", reply("view")).
		PATCH("/:id", reply("update")).
		DELETE("/:id", reply("delete"))
	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/products", "list"},
		{http.MethodPost, "/api/v1/products", "create"},
		{http.MethodPut, "/api/v1/products/42/view", "view"},
		{http.MethodPatch, "/api/v1/products/42", "update"},
		{http.MethodDelete, "/api/v1/products/42", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/products").Code, "routes live under the API prefix")
}

func TestDomainGroup_SubgroupsInheritMiddleware(t *testing.T) {
	engine := gin.New()
	var trail []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			trail = append(trail, name)
			c.Next()
		}
	}

	orders := NewDomainGroup("orders", "/orders").Use(mark("auth"))
	orders.POST("", reply("placed"))
	mine := orders.Group("my-orders", "/myorders").Use(mark("owner"))
	mine.GET("/:id", reply("one"))
	NewRouter(engine).Register(orders).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/orders/myorders/7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"auth", "owner"}, trail)

	trail = nil
	serve(engine, http.MethodPost, "/api/v1/orders")
	assert.Equal(t, []string{"auth"}, trail, "subgroup middleware stays in the subgroup")
}

func TestDomainGroup_RouteMiddlewareCanAbort(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }

	g := NewDomainGroup("orders", "/orders")
	g.GET("", deny, reply("all orders"))
	g.GET("/public", reply("ok"))
	NewRouter(engine).Register(g).Setup()

	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/orders").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/orders/public").Code)
}

func TestRouter_Routes(t *testing.T) {
	r := NewRouter(gin.New())

	categories := NewDomainGroup("categories", "/categories")
	categories.GET("", reply(""))
	admin := categories.Group("categories-admin", "/admin")
	admin.POST("", reply(""))
	admin.DELETE("/:id", reply(""))

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", reply(""))

	r.Register(categories).Register(auth)

	assert.Equal(t, []Route{
		{Group: "categories", Method: http.MethodGet, Path: "/api/v1/categories"},
		{Group: "categories-admin", Method: http.MethodPost, Path: "/api/v1/categories/admin"},
		{Group: "categories-admin", Method: http.MethodDelete, Path: "/api/v1/categories/admin/:id"},
		{Group: "auth", Method: http.MethodPost, Path: "/api/v1/auth/login"},
	}, r.Routes())
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"/api/v1", "", "/api/v1"},
		{"/api/v1", "/orders", "/api/v1/orders"},
		{"/api/v1/orders", "/myorders/", "/api/v1/orders/myorders/"},
		{"/api/v1", "products", "/api/v1/products"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPath(tt.base, tt.rel))
	}
}
