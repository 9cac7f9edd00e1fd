package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateModel holds the identity, timestamp and version columns
// every aggregate table shares
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	*m = AggregateModel(a)
}

func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot(*m)
}

// SoftDeleteColumns flattens a domain Lifecycle into the three columns
// stored on every soft-deletable table.
type SoftDeleteColumns struct {
	IsSoftDeleted bool       `gorm:"not null;default:false;index"`
	SoftDeletedAt *time.Time
	DeletedBy     *uuid.UUID `gorm:"type:uuid"`
}

// FromLifecycle populates the columns from a domain Lifecycle
func (c *SoftDeleteColumns) FromLifecycle(l shared.Lifecycle) {
	d, deleted := l.Deletion()
	c.IsSoftDeleted = deleted
	c.SoftDeletedAt = nil
	c.DeletedBy = nil
	if deleted {
		at, by := d.At, d.By
		c.SoftDeletedAt = &at
		c.DeletedBy = &by
	}
}

// ToLifecycle rebuilds the domain Lifecycle. A row flagged deleted with
// missing metadata is still treated as deleted.
func (c *SoftDeleteColumns) ToLifecycle() shared.Lifecycle {
	if !c.IsSoftDeleted {
		return shared.ActiveLifecycle()
	}
	var (
		at time.Time
		by uuid.UUID
	)
	if c.SoftDeletedAt != nil {
		at = *c.SoftDeletedAt
	}
	if c.DeletedBy != nil {
		by = *c.DeletedBy
	}
	return shared.DeletedLifecycle(at, by)
}
