package models

import "time"

// StatusType is the kind of deferred transition a StatusUpdate applies.
// The set is closed; the reconciler switches exhaustively over it.
type StatusType string

const (
	StatusClose             StatusType = "close"
	StatusOpen              StatusType = "open"
	StatusPublishToCategory StatusType = "publish_to_category"
	StatusDelete            StatusType = "delete"
	StatusDeleteReplies     StatusType = "delete_replies"
	StatusReminder          StatusType = "reminder"
	StatusBump              StatusType = "bump"
)

// StatusTypes lists every valid StatusType.
func StatusTypes() []StatusType {
	return []StatusType{
		StatusClose,
		StatusOpen,
		StatusPublishToCategory,
		StatusDelete,
		StatusDeleteReplies,
		StatusReminder,
		StatusBump,
	}
}

// ParseStatusType maps a wire string onto the enum.
func ParseStatusType(s string) (StatusType, bool) {
	for _, t := range StatusTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// StatusUpdate is one pending deferred transition for a topic. At most
// one row exists per (topic_id, status_type); re-scheduling updates the
// row in place.
type StatusUpdate struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	TopicID    int64      `gorm:"not null;uniqueIndex:idx_status_updates_topic_type"`
	StatusType StatusType `gorm:"type:varchar(30);not null;uniqueIndex:idx_status_updates_topic_type"`

	ExecuteAt time.Time `gorm:"not null;index"`

	// Duration keeps the human-specified hour count for
	// "closed after N days" wording; nil for absolute-time schedules.
	Duration        *int
	BasedOnLastPost bool `gorm:"not null;default:false"`
	CategoryID      *int64
	CreatedByID     int64 `gorm:"not null"`

	// ClaimedUntil is the sweep lease. A reconciler that wins the
	// conditional update owns the row until the lease expires.
	ClaimedUntil *time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (StatusUpdate) TableName() string {
	return "status_updates"
}
