package shared

import (
	"time"

	"github.com/google/uuid"
)

// Deletion records when and by whom a record was soft deleted
type Deletion struct {
	At time.Time
	By uuid.UUID
}

// Lifecycle is the soft-delete state of a record: either active or
// deleted with its deletion metadata. The zero value is active.
type Lifecycle struct {
	deletion *Deletion
}

// ActiveLifecycle returns the state of a live record
func ActiveLifecycle() Lifecycle {
	return Lifecycle{}
}

// DeletedLifecycle returns the state of a record deleted at the given time by the given user
func DeletedLifecycle(at time.Time, by uuid.UUID) Lifecycle {
	return Lifecycle{deletion: &Deletion{At: at, By: by}}
}

// IsDeleted returns true if the record has been soft deleted
func (l Lifecycle) IsDeleted() bool {
	return l.deletion != nil
}

// Deletion returns the deletion metadata and true when the record is deleted
func (l Lifecycle) Deletion() (Deletion, bool) {
	if l.deletion == nil {
		return Deletion{}, false
	}
	return *l.deletion, true
}

// Delete transitions an active lifecycle to deleted.
// Deleting twice is an invalid state transition.
func (l Lifecycle) Delete(at time.Time, by uuid.UUID) (Lifecycle, error) {
	if l.IsDeleted() {
		return l, NewDomainError("ALREADY_DELETED", "Record has already been deleted")
	}
	return DeletedLifecycle(at, by), nil
}
