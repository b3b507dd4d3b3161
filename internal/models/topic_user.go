package models

import "time"

// TopicUser carries per-user topic state. The only field this engine
// owns is the pin-dismissal marker: clearing a pin hides it for that
// user without touching the topic's pinned_at.
type TopicUser struct {
	TopicID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false"`

	ClearedPinnedAt *time.Time

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TopicUser) TableName() string {
	return "topic_users"
}
