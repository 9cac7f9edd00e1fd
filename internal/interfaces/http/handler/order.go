package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/storefront/backend/internal/application/trade"
)

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create places an order for the authenticated user
//
//	POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List returns one page of every order
//
//	GET /orders?page=&page_size=&sort_by=&sort_order=
func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// ListMine returns the orders of the authenticated user
//
//	GET /orders/myorders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetMine returns one order of the authenticated user. Admins may read any order.
//
//	GET /orders/myorders/:id
func (h *OrderHandler) GetMine(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	requester, err := getRequester(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	order, err := h.orderService.GetMine(c.Request.Context(), requester, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// MarkPaid confirms payment of an order and records the units sold
//
//	PUT /orders/myorders/:id/pay
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	requester, err := getRequester(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	order, err := h.orderService.MarkPaid(c.Request.Context(), requester, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
