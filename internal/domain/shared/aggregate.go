package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot carries the identity, timestamps and optimistic-lock
// version shared by every aggregate. Version starts at 1 and grows by one
// with each recorded change.
type BaseAggregateRoot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

// NewBaseAggregateRoot returns the root of a fresh aggregate stamped with now
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{ID: uuid.New(), CreatedAt: now, UpdatedAt: now, Version: 1}
}

// Touch records a change made at the given time
func (a *BaseAggregateRoot) Touch(at time.Time) {
	a.UpdatedAt = at
	a.Version++
}
