package models

import "time"

// SystemUserID is the actor recorded for automated transitions and for
// schedules issued by users below the staff/trust threshold.
const SystemUserID int64 = -1

// MaxTrustLevel is the top trust tier; users at this tier keep
// attribution for their own scheduled status updates.
const MaxTrustLevel = 4

type User struct {
	ID         int64  `gorm:"primaryKey"`
	Username   string `gorm:"type:varchar(60);not null;uniqueIndex"`
	Admin      bool   `gorm:"not null;default:false"`
	Moderator  bool   `gorm:"not null;default:false"`
	TrustLevel int    `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Staff reports whether the user may act under their own name when
// scheduling deferred transitions.
func (u *User) Staff() bool {
	return u != nil && (u.Admin || u.Moderator)
}

func (u *User) StaffOrTopTrust() bool {
	return u != nil && (u.Staff() || u.TrustLevel >= MaxTrustLevel)
}
