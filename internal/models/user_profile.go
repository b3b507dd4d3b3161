package models

import "time"

// UserProfile holds the dismissed-banner marker: the id of the banner
// topic the user closed. Promoting or demoting that topic clears the
// marker so the next banner shows again.
type UserProfile struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`

	DismissedBannerKey *int64 `gorm:"index"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
