package gormrepository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"forum/internal/models"
	"forum/internal/repository"
)

// Store is the gorm-backed repository implementation.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Users ------------------------------------------------------------------

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var item models.User
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Topics -----------------------------------------------------------------

func (s *Store) GetTopicByID(ctx context.Context, id int64) (*models.Topic, error) {
	var item models.Topic
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// statusColumns whitelists the boolean axes SetTopicFlag may touch.
var statusColumns = map[string]bool{
	"visible":  true,
	"closed":   true,
	"archived": true,
}

func (s *Store) SetTopicFlag(ctx context.Context, topicID int64, column string, enabled bool) (bool, error) {
	if !statusColumns[column] {
		return false, errors.New("not a status column: " + column)
	}
	res := s.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", topicID).
		Where("deleted_at IS NULL").
		Where(column+" = ?", !enabled).
		UpdateColumn(column, enabled)
	return res.RowsAffected == 1, res.Error
}

func (s *Store) SetTopicPinned(ctx context.Context, topicID int64, pinnedAt *time.Time, global bool) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", topicID).
		Where("deleted_at IS NULL")
	if pinnedAt == nil {
		query = query.Where("pinned_at IS NOT NULL")
	} else {
		// Allow local<->global moves: only a topic already pinned at
		// the requested scope counts as unchanged.
		query = query.Where("NOT (pinned_at IS NOT NULL AND pinned_globally = ?)", global)
	}
	res := query.UpdateColumns(map[string]any{
		"pinned_at":       pinnedAt,
		"pinned_globally": pinnedAt != nil && global,
	})
	return res.RowsAffected == 1, res.Error
}

func (s *Store) SetTopicCategory(ctx context.Context, topicID int64, categoryID int64) error {
	return s.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", topicID).
		UpdateColumn("category_id", categoryID).Error
}

func (s *Store) SetTopicArchetypeTx(ctx context.Context, tx *gorm.DB, topicID int64, from, to string) (bool, error) {
	res := s.conn(tx).WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", topicID).
		Where("archetype = ?", from).
		UpdateColumn("archetype", to)
	return res.RowsAffected == 1, res.Error
}

func (s *Store) DemoteBannersTx(ctx context.Context, tx *gorm.DB, exceptTopicID int64) (int64, error) {
	res := s.conn(tx).WithContext(ctx).
		Model(&models.Topic{}).
		Where("archetype = ?", models.ArchetypeBanner).
		Where("id <> ?", exceptTopicID).
		UpdateColumn("archetype", models.ArchetypeRegular)
	return res.RowsAffected, res.Error
}

func (s *Store) ClearDismissedBannerKeysTx(ctx context.Context, tx *gorm.DB, topicID int64) (int64, error) {
	res := s.conn(tx).WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("dismissed_banner_key = ?", topicID).
		UpdateColumn("dismissed_banner_key", nil)
	return res.RowsAffected, res.Error
}

// --- Posts ------------------------------------------------------------------

// CreateModeratorPost appends a history post and bumps the topic's post
// counters in one transaction. It never touches bumped_at.
func (s *Store) CreateModeratorPost(ctx context.Context, topicID, userID int64, raw string, at time.Time) (*models.Post, error) {
	var created models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.First(&topic, "id = ?", topicID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNotFound
			}
			return err
		}
		created = models.Post{
			TopicID:    topicID,
			UserID:     userID,
			PostNumber: topic.HighestPostNumber + 1,
			Raw:        raw,
			Moderator:  true,
			CreatedAt:  at,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		return tx.Model(&models.Topic{}).
			Where("id = ?", topicID).
			UpdateColumns(map[string]any{
				"highest_post_number":  gorm.Expr("highest_post_number + 1"),
				"moderator_post_count": gorm.Expr("moderator_post_count + 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) LatestPostAt(ctx context.Context, topicID int64) (*time.Time, error) {
	var item models.Post
	err := s.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("post_number desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	at := item.CreatedAt
	return &at, nil
}

// --- Status updates ---------------------------------------------------------

// UpsertStatusUpdate inserts or, when a row for (topic_id, status_type)
// already exists, rewrites its schedule in place. created_at survives
// the conflict path.
func (s *Store) UpsertStatusUpdate(ctx context.Context, item *models.StatusUpdate) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "topic_id"}, {Name: "status_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"execute_at",
			"duration",
			"based_on_last_post",
			"category_id",
			"created_by_id",
			"claimed_until",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetStatusUpdate(ctx context.Context, topicID int64, statusType models.StatusType) (*models.StatusUpdate, error) {
	var item models.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("topic_id = ? AND status_type = ?", topicID, statusType).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListStatusUpdatesByTopic(ctx context.Context, topicID int64) ([]models.StatusUpdate, error) {
	var items []models.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("execute_at asc").
		Find(&items).Error
	return items, err
}

func (s *Store) DeleteStatusUpdate(ctx context.Context, topicID int64, statusType models.StatusType) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("topic_id = ? AND status_type = ?", topicID, statusType).
		Delete(&models.StatusUpdate{})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteStatusUpdateByID(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.StatusUpdate{}, "id = ?", id).Error
}

func (s *Store) ListDueStatusUpdates(ctx context.Context, now time.Time, limit int) ([]models.StatusUpdate, error) {
	if limit <= 0 {
		limit = 100
	}
	var items []models.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("execute_at <= ?", now).
		Order("execute_at asc").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (s *Store) ClaimStatusUpdate(ctx context.Context, id int64, now, leaseUntil time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.StatusUpdate{}).
		Where("id = ?", id).
		Where("claimed_until IS NULL OR claimed_until < ?", now).
		UpdateColumn("claimed_until", leaseUntil)
	return res.RowsAffected == 1, res.Error
}

func (s *Store) ReleaseStatusUpdate(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).
		Model(&models.StatusUpdate{}).
		Where("id = ?", id).
		UpdateColumn("claimed_until", nil).Error
}

// RescheduleStatusUpdate pushes a claimed row forward and releases it.
func (s *Store) RescheduleStatusUpdate(ctx context.Context, id int64, executeAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.StatusUpdate{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"execute_at":    executeAt,
			"claimed_until": nil,
		}).Error
}

// --- Pin dismissal ----------------------------------------------------------

func (s *Store) SetClearedPin(ctx context.Context, topicID, userID int64, at *time.Time) error {
	item := models.TopicUser{
		TopicID:         topicID,
		UserID:          userID,
		ClearedPinnedAt: at,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "topic_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cleared_pinned_at", "updated_at"}),
	}).Create(&item).Error
}

func (s *Store) GetTopicUser(ctx context.Context, topicID, userID int64) (*models.TopicUser, error) {
	var item models.TopicUser
	err := s.db.WithContext(ctx).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Archive state ----------------------------------------------------------

func (s *Store) ArchiveMessageForUser(ctx context.Context, userID, topicID int64) error {
	item := models.UserArchivedMessage{UserID: userID, TopicID: topicID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
}

func (s *Store) MoveToInboxForUser(ctx context.Context, userID, topicID int64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Delete(&models.UserArchivedMessage{}).Error
}

func (s *Store) ArchiveMessageForGroup(ctx context.Context, groupID, topicID int64) error {
	item := models.GroupArchivedMessage{GroupID: groupID, TopicID: topicID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
}

func (s *Store) MoveToInboxForGroup(ctx context.Context, groupID, topicID int64) error {
	return s.db.WithContext(ctx).
		Where("group_id = ? AND topic_id = ?", groupID, topicID).
		Delete(&models.GroupArchivedMessage{}).Error
}

// --- Applied transitions ----------------------------------------------------

func (s *Store) InsertAppliedTransition(ctx context.Context, item *models.AppliedTransition) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAppliedTransitions(ctx context.Context, params repository.ListAppliedTransitionsParams) ([]models.AppliedTransition, error) {
	query := s.appliedTransitionsQuery(ctx, params)
	limit := params.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	var items []models.AppliedTransition
	err := query.Order("applied_at desc").Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

func (s *Store) CountAppliedTransitions(ctx context.Context, params repository.ListAppliedTransitionsParams) (int64, error) {
	var total int64
	err := s.appliedTransitionsQuery(ctx, params).Count(&total).Error
	return total, err
}

func (s *Store) appliedTransitionsQuery(ctx context.Context, params repository.ListAppliedTransitionsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.AppliedTransition{})
	if params.TopicID != nil {
		query = query.Where("topic_id = ?", *params.TopicID)
	}
	if params.StatusType != nil {
		query = query.Where("status_type = ?", *params.StatusType)
	}
	if params.Action != nil {
		query = query.Where("action = ?", *params.Action)
	}
	if params.Since != nil {
		query = query.Where("applied_at >= ?", *params.Since)
	}
	return query
}

// --- System settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
