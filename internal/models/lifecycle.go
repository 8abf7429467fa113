// Package models contains data structures for the hub's directory entities.
package models

import "time"

// Lifecycle is the shared identity, soft-delete flag and timestamps of every listable entity.
type Lifecycle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Deleted   bool      `gorm:"not null;default:false;index" json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the primary key.
func (l *Lifecycle) GetID() uint { return l.ID }

// IsDeleted reports whether the record is soft-deleted.
func (l *Lifecycle) IsDeleted() bool { return l.Deleted }

// SetDeleted flips the soft-delete flag.
func (l *Lifecycle) SetDeleted(deleted bool) { l.Deleted = deleted }

// PrepareCreate resets server-owned fields before the first insert.
func (l *Lifecycle) PrepareCreate(now time.Time) {
	l.ID = 0
	l.Deleted = false
	l.CreatedAt = now
	l.UpdatedAt = now
}

// Touch advances updated_at.
func (l *Lifecycle) Touch(now time.Time) { l.UpdatedAt = now }

// Moderation carries the approval flag of entities subject to review.
type Moderation struct {
	Approved bool `gorm:"not null;default:false;index" json:"approved"`
}

// IsApproved reports the approval state.
func (m *Moderation) IsApproved() bool { return m.Approved }

// SetApproved sets the approval state.
func (m *Moderation) SetApproved(approved bool) { m.Approved = approved }

// Entity is implemented by every listable record through an embedded Lifecycle.
type Entity interface {
	GetID() uint
	IsDeleted() bool
	SetDeleted(deleted bool)
	PrepareCreate(now time.Time)
	Touch(now time.Time)
}

// Moderated is implemented by records that embed Moderation.
type Moderated interface {
	IsApproved() bool
	SetApproved(approved bool)
}

// Defaulter fills enumerated and temporal defaults before validation on create.
type Defaulter interface {
	ApplyDefaults(now time.Time)
}
