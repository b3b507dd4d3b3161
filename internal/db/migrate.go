package db

import (
	"time"

	"gorm.io/gorm/clause"

	"forum/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Topic{},
		&models.Post{},
		&models.TopicUser{},
		&models.StatusUpdate{},
		&models.UserArchivedMessage{},
		&models.GroupArchivedMessage{},
		&models.AppliedTransition{},
		&models.SystemSetting{},
	); err != nil {
		return err
	}

	return seedSystemUser(db)
}

// seedSystemUser guarantees the actor automated transitions are
// attributed to.
func seedSystemUser(db *DB) error {
	system := models.User{
		ID:         models.SystemUserID,
		Username:   "system",
		Admin:      true,
		Moderator:  true,
		TrustLevel: models.MaxTrustLevel,
		CreatedAt:  time.Now().UTC(),
	}
	return db.Gorm.Clauses(clause.OnConflict{DoNothing: true}).Create(&system).Error
}
