package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// RouteGuards are the middlewares that protect route groups
type RouteGuards struct {
	Authenticated gin.HandlerFunc // rejects requests without a valid token
	Optional      gin.HandlerFunc // reads a token when one is present
	Admin         gin.HandlerFunc // runs after Authenticated
	AuthLimit     gin.HandlerFunc // throttles credential endpoints; may be nil
}

func (g RouteGuards) admin() []gin.HandlerFunc {
	return []gin.HandlerFunc{g.Authenticated, g.Admin}
}

func (g RouteGuards) credentials(h gin.HandlerFunc) []gin.HandlerFunc {
	if g.AuthLimit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{g.AuthLimit, h}
}

// AuthRoutes creates the route group for account endpoints
func AuthRoutes(h *AuthHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("auth", "/auth")
	group.POST("/register", guards.credentials(h.Register)...)
	group.POST("/login", guards.credentials(h.Login)...)

	group.POST("/logout", guards.Authenticated, h.Logout)
	group.GET("/me", guards.Authenticated, h.Me)
	return group
}

// CategoryRoutes creates the route group for category endpoints
func CategoryRoutes(h *CategoryHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("categories", "/categories")
	group.GET("", guards.Optional, h.Tree)

	admin := group.Group("categories-admin", "/admin").Use(guards.admin()...)
	admin.GET("/deleted", h.ListDeleted)
	admin.POST("", h.Create)
	admin.PATCH("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	return group
}

// BrandRoutes creates the route group for brand endpoints
func BrandRoutes(h *BrandHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("brands", "/brands")
	group.GET("", h.List)

	admin := group.Group("brands-admin", "/admin").Use(guards.admin()...)
	admin.POST("", h.Create)
	admin.DELETE("/:id", h.Delete)
	return group
}

// ProductRoutes creates the route group for product endpoints
func ProductRoutes(h *ProductHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("products", "/products")
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.PUT("/:id/view", h.IncrementViews)

	admin := group.Group("products-admin", "/admin").Use(guards.admin()...)
	admin.POST("/images", h.RequestImageUpload)
	admin.POST("", h.Create)
	admin.PATCH("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	return group
}

// OrderRoutes creates the route group for order and invoice endpoints
func OrderRoutes(h *OrderHandler, invoices *InvoiceHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("orders", "/orders")
	group.Use(guards.Authenticated)
	group.POST("", h.Create)
	group.GET("", guards.Admin, h.List)

	mine := group.Group("my-orders", "/myorders")
	mine.GET("", h.ListMine)
	mine.GET("/:id", h.GetMine)
	mine.PUT("/:id/pay", h.MarkPaid)
	mine.GET("/:id/invoice", invoices.Download)
	return group
}
