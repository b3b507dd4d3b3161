package models

import "time"

// Post holds both regular replies and the moderator posts that record
// status changes. Replies matter here only as the anchor for
// based-on-last-post schedules; content storage is otherwise external.
type Post struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TopicID    int64  `gorm:"not null;index:idx_posts_topic_number"`
	UserID     int64  `gorm:"not null;index"`
	PostNumber int    `gorm:"not null;index:idx_posts_topic_number"`
	Raw        string `gorm:"type:text;not null"`
	Moderator  bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (Post) TableName() string {
	return "posts"
}
