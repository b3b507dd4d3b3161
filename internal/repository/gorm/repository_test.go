package gormrepository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"forum/internal/models"
)

var testNow = time.Date(2013, 11, 20, 8, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Topic{}, &models.Post{}, &models.StatusUpdate{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db), db
}

func TestClaimStatusUpdate_SingleWinner(t *testing.T) {
	store, db := setupStore(t)
	row := models.StatusUpdate{TopicID: 10, StatusType: models.StatusClose, ExecuteAt: testNow, CreatedByID: 1}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	lease := testNow.Add(5 * time.Minute)
	won, err := store.ClaimStatusUpdate(context.Background(), row.ID, testNow, lease)
	if err != nil || !won {
		t.Fatalf("first claim won=%v err=%v", won, err)
	}
	won, err = store.ClaimStatusUpdate(context.Background(), row.ID, testNow, lease)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if won {
		t.Fatalf("second claimer won a held lease")
	}

	// After the lease expires the row is claimable again.
	later := lease.Add(time.Second)
	won, err = store.ClaimStatusUpdate(context.Background(), row.ID, later, later.Add(5*time.Minute))
	if err != nil || !won {
		t.Fatalf("reclaim after expiry won=%v err=%v", won, err)
	}
}

func TestSetTopicFlag_RejectsUnknownColumn(t *testing.T) {
	store, db := setupStore(t)
	topic := models.Topic{ID: 10, Title: "t", UserID: 1, Archetype: models.ArchetypeRegular, BumpedAt: testNow}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.SetTopicFlag(context.Background(), 10, "user_id", true); err == nil {
		t.Fatalf("arbitrary column accepted")
	}
	changed, err := store.SetTopicFlag(context.Background(), 10, "closed", true)
	if err != nil || !changed {
		t.Fatalf("close changed=%v err=%v", changed, err)
	}
}

func TestCreateModeratorPost_NumbersAndCounters(t *testing.T) {
	store, db := setupStore(t)
	topic := models.Topic{ID: 10, Title: "t", UserID: 1, Archetype: models.ArchetypeRegular, BumpedAt: testNow, HighestPostNumber: 3}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	post, err := store.CreateModeratorPost(context.Background(), 10, -1, "closed", testNow)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.PostNumber != 4 || !post.Moderator {
		t.Fatalf("post=%+v", post)
	}

	var got models.Topic
	if err := db.First(&got, "id = ?", 10).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.HighestPostNumber != 4 || got.ModeratorPostCount != 1 {
		t.Fatalf("counters=%d/%d want 4/1", got.HighestPostNumber, got.ModeratorPostCount)
	}
	if !got.BumpedAt.Equal(testNow) {
		t.Fatalf("bumped_at moved: %v", got.BumpedAt)
	}
}
