package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order and locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll returns orders newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts all orders
	Count(ctx context.Context) (int64, error)

	// FindByUser returns the orders of a user newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error
}
