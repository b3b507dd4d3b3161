package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"forum/internal/models"
)

// ErrNotFound is returned by Get* methods when the row does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the persistence surface of the status engine. The gorm
// implementation lives in repository/gorm.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Topics
	GetTopicByID(ctx context.Context, id int64) (*models.Topic, error)
	// SetTopicFlag flips one boolean status column with a conditional
	// update; false means the topic was already in the target state
	// (or is gone), so the caller must not append a history post.
	SetTopicFlag(ctx context.Context, topicID int64, column string, enabled bool) (bool, error)
	SetTopicPinned(ctx context.Context, topicID int64, pinnedAt *time.Time, global bool) (bool, error)
	SetTopicCategory(ctx context.Context, topicID int64, categoryID int64) error
	SetTopicArchetypeTx(ctx context.Context, tx *gorm.DB, topicID int64, from, to string) (bool, error)
	DemoteBannersTx(ctx context.Context, tx *gorm.DB, exceptTopicID int64) (int64, error)
	ClearDismissedBannerKeysTx(ctx context.Context, tx *gorm.DB, topicID int64) (int64, error)

	// Posts
	CreateModeratorPost(ctx context.Context, topicID, userID int64, raw string, at time.Time) (*models.Post, error)
	LatestPostAt(ctx context.Context, topicID int64) (*time.Time, error)

	// Status updates
	UpsertStatusUpdate(ctx context.Context, item *models.StatusUpdate) error
	GetStatusUpdate(ctx context.Context, topicID int64, statusType models.StatusType) (*models.StatusUpdate, error)
	ListStatusUpdatesByTopic(ctx context.Context, topicID int64) ([]models.StatusUpdate, error)
	DeleteStatusUpdate(ctx context.Context, topicID int64, statusType models.StatusType) (int64, error)
	DeleteStatusUpdateByID(ctx context.Context, id int64) error
	ListDueStatusUpdates(ctx context.Context, now time.Time, limit int) ([]models.StatusUpdate, error)
	// ClaimStatusUpdate takes the sweep lease; true means this caller
	// won the row and no concurrent sweeper will process it until the
	// lease expires.
	ClaimStatusUpdate(ctx context.Context, id int64, now, leaseUntil time.Time) (bool, error)
	ReleaseStatusUpdate(ctx context.Context, id int64) error
	RescheduleStatusUpdate(ctx context.Context, id int64, executeAt time.Time) error

	// Per-user pin dismissal
	SetClearedPin(ctx context.Context, topicID, userID int64, at *time.Time) error
	GetTopicUser(ctx context.Context, topicID, userID int64) (*models.TopicUser, error)

	// Private-message archive state
	ArchiveMessageForUser(ctx context.Context, userID, topicID int64) error
	MoveToInboxForUser(ctx context.Context, userID, topicID int64) error
	ArchiveMessageForGroup(ctx context.Context, groupID, topicID int64) error
	MoveToInboxForGroup(ctx context.Context, groupID, topicID int64) error

	// Reconciler observability log
	InsertAppliedTransition(ctx context.Context, item *models.AppliedTransition) error
	ListAppliedTransitions(ctx context.Context, params ListAppliedTransitionsParams) ([]models.AppliedTransition, error)
	CountAppliedTransitions(ctx context.Context, params ListAppliedTransitionsParams) (int64, error)

	// System settings
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
}

type ListAppliedTransitionsParams struct {
	Limit      int
	Offset     int
	TopicID    *int64
	StatusType *models.StatusType
	Action     *string
	Since      *time.Time
}
