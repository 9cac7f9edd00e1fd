package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderItems stores order lines as a JSON document
type OrderItems []trade.OrderItem

// Value implements driver.Valuer
func (i OrderItems) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (i *OrderItems) Scan(value any) error {
	return scanJSON(value, i)
}

// ShippingAddressJSON stores a shipping address as a JSON document
type ShippingAddressJSON trade.ShippingAddress

// Value implements driver.Valuer
func (a ShippingAddressJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *ShippingAddressJSON) Scan(value any) error {
	return scanJSON(value, a)
}

func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}

// OrderModel is the persistence model for the Order domain entity
type OrderModel struct {
	AggregateModel
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items           OrderItems          `gorm:"type:jsonb;not null"`
	ShippingAddress ShippingAddressJSON `gorm:"type:jsonb;not null"`
	PaymentMethod   string              `gorm:"type:varchar(50);not null"`
	ItemsPrice      decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	TaxPrice        decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingPrice   decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPrice      decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	IsPaid          bool                `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsDelivered     bool `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity
func (m *OrderModel) ToDomain() *trade.Order {
	items := make([]trade.OrderItem, len(m.Items))
	copy(items, m.Items)
	return &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             items,
		ShippingAddress:   trade.ShippingAddress(m.ShippingAddress),
		PaymentMethod:     m.PaymentMethod,
		ItemsPrice:        m.ItemsPrice,
		TaxPrice:          m.TaxPrice,
		ShippingPrice:     m.ShippingPrice,
		TotalPrice:        m.TotalPrice,
		IsPaid:            m.IsPaid,
		PaidAt:            m.PaidAt,
		IsDelivered:       m.IsDelivered,
		DeliveredAt:       m.DeliveredAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.Items = OrderItems(o.Items)
	m.ShippingAddress = ShippingAddressJSON(o.ShippingAddress)
	m.PaymentMethod = o.PaymentMethod
	m.ItemsPrice = o.ItemsPrice
	m.TaxPrice = o.TaxPrice
	m.ShippingPrice = o.ShippingPrice
	m.TotalPrice = o.TotalPrice
	m.IsPaid = o.IsPaid
	m.PaidAt = o.PaidAt
	m.IsDelivered = o.IsDelivered
	m.DeliveredAt = o.DeliveredAt
}
