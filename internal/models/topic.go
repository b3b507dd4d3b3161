package models

import "time"

// Archetype values. A topic is regular, the sitewide banner, or a
// private message. At most one banner topic exists at any time; the
// invariant is enforced transactionally in the status service.
const (
	ArchetypeRegular        = "regular"
	ArchetypeBanner         = "banner"
	ArchetypePrivateMessage = "private_message"
)

type Topic struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Title      string `gorm:"type:varchar(255);not null"`
	UserID     int64  `gorm:"not null;index"`
	CategoryID *int64 `gorm:"index"`

	Archetype string `gorm:"type:varchar(20);not null;index;default:'regular'"`

	// Independent status axes. Pinned state is the pair
	// (pinned_at, pinned_globally): a nil pinned_at means not pinned.
	Visible        bool `gorm:"not null;default:true"`
	Closed         bool `gorm:"not null;default:false"`
	Archived       bool `gorm:"not null;default:false"`
	PinnedAt       *time.Time
	PinnedGlobally bool `gorm:"not null;default:false"`

	BumpedAt           time.Time `gorm:"not null;index"`
	ModeratorPostCount int       `gorm:"not null;default:0"`
	HighestPostNumber  int       `gorm:"not null;default:0"`

	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`
}

func (Topic) TableName() string {
	return "topics"
}

func (t *Topic) Pinned() bool {
	return t != nil && t.PinnedAt != nil
}

func (t *Topic) PrivateMessage() bool {
	return t != nil && t.Archetype == ArchetypePrivateMessage
}
