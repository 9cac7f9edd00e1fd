package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
)

// Requester identifies the caller of an order operation
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (r Requester) canAccess(order *trade.Order) bool {
	return r.IsAdmin || order.IsOwnedBy(r.UserID)
}

// OrderItemRequest is one line of a checkout
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=1000"`
}

// ShippingAddressRequest is the delivery address of a checkout
type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
}

// CreateOrderRequest represents a checkout. Prices are looked up server side.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,max=100,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required,max=50"`
}

// OrderListFilter represents the admin order listing query
type OrderListFilter struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at updated_at paid_at total_price"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

// ShippingAddressResponse represents a delivery address in API responses
type ShippingAddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	Items           []OrderItemResponse     `json:"items"`
	ShippingAddress ShippingAddressResponse `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method"`
	ItemsPrice      decimal.Decimal         `json:"items_price"`
	TaxPrice        decimal.Decimal         `json:"tax_price"`
	ShippingPrice   decimal.Decimal         `json:"shipping_price"`
	TotalPrice      decimal.Decimal         `json:"total_price"`
	IsPaid          bool                    `json:"is_paid"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	IsDelivered     bool                    `json:"is_delivered"`
	DeliveredAt     *time.Time              `json:"delivered_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Amount:    item.Amount(),
		}
	}
	return OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: ShippingAddressResponse{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice,
		TaxPrice:      o.TaxPrice,
		ShippingPrice: o.ShippingPrice,
		TotalPrice:    o.TotalPrice,
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OrderPage is one page of the admin order listing
type OrderPage struct {
	Orders []OrderResponse `json:"orders"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
	Total  int64           `json:"total"`
}
