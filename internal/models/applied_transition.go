package models

import (
	"time"

	"gorm.io/datatypes"
)

// Transition outcomes recorded by the reconciler.
const (
	TransitionApplied = "applied"
	TransitionSkipped = "skipped"
	TransitionFailed  = "failed"
)

// AppliedTransition is the observability log the reconciler writes: one
// row per due status update it processed, whether the apply succeeded,
// was deferred, or failed.
type AppliedTransition struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	StatusUpdateID int64      `gorm:"not null;index"`
	TopicID        int64      `gorm:"not null;index"`
	StatusType     StatusType `gorm:"type:varchar(30);not null;index"`

	Action string         `gorm:"type:varchar(20);not null;index"`
	Detail datatypes.JSON `gorm:"type:jsonb"`

	AppliedAt time.Time `gorm:"not null;index"`
}

func (AppliedTransition) TableName() string {
	return "applied_transitions"
}
