package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderItem is a line of an order
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Amount returns the line total
func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OneLine renders the address on a single line
func (a ShippingAddress) OneLine() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Order is a customer checkout
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
}

// NewOrder creates an unpaid order owned by userID.
// Items price and total are computed from the lines.
func NewOrder(
	userID uuid.UUID,
	items []OrderItem,
	address ShippingAddress,
	paymentMethod string,
	taxPrice, shippingPrice decimal.Decimal,
) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Order owner is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Order item product is required")
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Order item quantity must be positive")
		}
		if item.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Order item price cannot be negative")
		}
	}
	if taxPrice.IsNegative() || shippingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Tax and shipping cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             append([]OrderItem(nil), items...),
		ShippingAddress:   address,
		PaymentMethod:     strings.TrimSpace(paymentMethod),
		TaxPrice:          taxPrice,
		ShippingPrice:     shippingPrice,
	}
	order.recalculateTotals()
	return order, nil
}

// MarkPaid records the payment confirmation.
// An order is paid at most once.
func (o *Order) MarkPaid(at time.Time) error {
	if o.IsPaid {
		return shared.NewDomainError("ORDER_ALREADY_PAID", "Order has already been paid")
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.Touch(at)
	return nil
}

// IsOwnedBy returns true if the order belongs to the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// TotalQuantity returns the number of units across all lines
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o *Order) recalculateTotals() {
	items := decimal.Zero
	for _, item := range o.Items {
		items = items.Add(item.Amount())
	}
	o.ItemsPrice = items
	o.TotalPrice = items.Add(o.TaxPrice).Add(o.ShippingPrice)
}
