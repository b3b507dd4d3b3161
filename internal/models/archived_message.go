package models

import "time"

// UserArchivedMessage marks a private-message topic as archived for one
// user. Moving back to the inbox deletes the row.
type UserArchivedMessage struct {
	UserID  int64 `gorm:"primaryKey;autoIncrement:false"`
	TopicID int64 `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserArchivedMessage) TableName() string {
	return "user_archived_messages"
}

// GroupArchivedMessage is the group-inbox equivalent.
type GroupArchivedMessage struct {
	GroupID int64 `gorm:"primaryKey;autoIncrement:false"`
	TopicID int64 `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (GroupArchivedMessage) TableName() string {
	return "group_archived_messages"
}
