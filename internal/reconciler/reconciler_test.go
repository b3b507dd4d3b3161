package reconciler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"forum/internal/clock"
	"forum/internal/config"
	"forum/internal/events"
	"forum/internal/models"
	gormrepository "forum/internal/repository/gorm"
	"forum/internal/status"
)

var sweepNow = time.Date(2013, 11, 23, 8, 0, 0, 0, time.UTC)

type captureEvents struct {
	events []events.Event
}

func (c *captureEvents) Publish(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

type failingDestroyer struct {
	err error
}

func (d failingDestroyer) DestroyTopic(context.Context, int64) error   { return d.err }
func (d failingDestroyer) DestroyReplies(context.Context, int64) error { return d.err }

type recordingDestroyer struct {
	topics  []int64
	replies []int64
}

func (d *recordingDestroyer) DestroyTopic(_ context.Context, topicID int64) error {
	d.topics = append(d.topics, topicID)
	return nil
}

func (d *recordingDestroyer) DestroyReplies(_ context.Context, topicID int64) error {
	d.replies = append(d.replies, topicID)
	return nil
}

func setupReconciler(t *testing.T) (*Reconciler, *gorm.DB, *captureEvents) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.UserProfile{}, &models.Topic{}, &models.Post{},
		&models.StatusUpdate{}, &models.AppliedTransition{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&models.User{ID: models.SystemUserID, Username: "system", Admin: true}).Error; err != nil {
		t.Fatalf("seed system user: %v", err)
	}
	store := gormrepository.New(db)
	capture := &captureEvents{}
	frozen := clock.NewFrozen(sweepNow)
	r := &Reconciler{
		Repo: store,
		Status: &status.Service{
			Repo:   store,
			Clock:  frozen,
			Events: capture,
			Logger: zap.NewNop(),
		},
		Events:    capture,
		Destroyer: NopDestroyer{},
		Clock:     frozen,
		Logger:    zap.NewNop(),
		Config: config.ReconcilerConfig{
			BatchSize:     100,
			ClaimLease:    5 * time.Minute,
			TrackLastPost: true,
		},
	}
	return r, db, capture
}

func seedTopic(t *testing.T, db *gorm.DB, topic models.Topic) models.Topic {
	t.Helper()
	if topic.Archetype == "" {
		topic.Archetype = models.ArchetypeRegular
	}
	if topic.Title == "" {
		topic.Title = "topic"
	}
	if topic.UserID == 0 {
		topic.UserID = 2
	}
	if topic.BumpedAt.IsZero() {
		topic.BumpedAt = sweepNow.Add(-96 * time.Hour)
	}
	topic.Visible = true
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return topic
}

func seedDue(t *testing.T, db *gorm.DB, row models.StatusUpdate) models.StatusUpdate {
	t.Helper()
	if row.ExecuteAt.IsZero() {
		row.ExecuteAt = sweepNow.Add(-time.Minute)
	}
	if row.CreatedByID == 0 {
		row.CreatedByID = models.SystemUserID
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed status update: %v", err)
	}
	return row
}

func TestRunOnce_ClosesDueTopic(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	duration := 72
	seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusClose, Duration: &duration})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionApplied {
		t.Fatalf("applied=%+v want one applied transition", applied)
	}

	var got models.Topic
	if err := db.First(&got, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("reload topic: %v", err)
	}
	if !got.Closed {
		t.Fatalf("topic not closed")
	}

	var post models.Post
	if err := db.First(&post, "topic_id = ?", topic.ID).Error; err != nil {
		t.Fatalf("history post missing: %v", err)
	}
	if !strings.Contains(post.Raw, "automatically closed after 3 days") {
		t.Fatalf("post wording: %q", post.Raw)
	}

	var remaining int64
	if err := db.Model(&models.StatusUpdate{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("due row survived the sweep")
	}

	// A second sweep has nothing to do.
	applied, err = r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("second sweep applied %d transitions", len(applied))
	}
}

func TestRunOnce_NotDueYet(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	seedDue(t, db, models.StatusUpdate{
		TopicID: topic.ID, StatusType: models.StatusClose,
		ExecuteAt: sweepNow.Add(time.Hour),
	})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("fired a future row")
	}
}

func TestRunOnce_ReopensDueTopic(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10, Closed: true})
	seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusOpen})

	if _, err := r.RunOnce(context.Background(), sweepNow); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got models.Topic
	if err := db.First(&got, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Closed {
		t.Fatalf("topic still closed")
	}
}

func TestRunOnce_ClaimedRowIsSkipped(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	row := seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusClose})

	// Another sweeper holds the lease.
	lease := sweepNow.Add(4 * time.Minute)
	if err := db.Model(&models.StatusUpdate{}).
		Where("id = ?", row.ID).
		UpdateColumn("claimed_until", lease).Error; err != nil {
		t.Fatalf("take lease: %v", err)
	}

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("processed a row claimed elsewhere")
	}
	var got models.Topic
	if err := db.First(&got, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Closed {
		t.Fatalf("claimed row was applied anyway")
	}
}

func TestRunOnce_ExpiredLeaseIsReclaimed(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	row := seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusClose})

	stale := sweepNow.Add(-time.Minute)
	if err := db.Model(&models.StatusUpdate{}).
		Where("id = ?", row.ID).
		UpdateColumn("claimed_until", stale).Error; err != nil {
		t.Fatalf("take stale lease: %v", err)
	}

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("stale lease not reclaimed")
	}
}

func TestRunOnce_NewReplyPushesLastPostDeadline(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	lastPost := sweepNow.Add(-time.Hour)
	if err := db.Create(&models.Post{TopicID: topic.ID, UserID: 2, PostNumber: 1, Raw: "reply", CreatedAt: lastPost}).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	duration := 24
	row := seedDue(t, db, models.StatusUpdate{
		TopicID: topic.ID, StatusType: models.StatusClose,
		Duration: &duration, BasedOnLastPost: true,
	})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionSkipped {
		t.Fatalf("applied=%+v want one skipped transition", applied)
	}

	var got models.StatusUpdate
	if err := db.First(&got, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("row deleted instead of rescheduled: %v", err)
	}
	want := lastPost.Add(24 * time.Hour)
	if !got.ExecuteAt.Equal(want) {
		t.Fatalf("execute_at=%v want=%v", got.ExecuteAt, want)
	}
	if got.ClaimedUntil != nil {
		t.Fatalf("lease not released on reschedule")
	}

	var reloaded models.Topic
	if err := db.First(&reloaded, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("reload topic: %v", err)
	}
	if reloaded.Closed {
		t.Fatalf("topic closed under a fresh reply")
	}
}

func TestRunOnce_PublishToCategory(t *testing.T) {
	r, db, capture := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10, Archetype: models.ArchetypeBanner})
	category := int64(42)
	seedDue(t, db, models.StatusUpdate{
		TopicID: topic.ID, StatusType: models.StatusPublishToCategory,
		CategoryID: &category,
	})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionApplied {
		t.Fatalf("applied=%+v", applied)
	}

	var got models.Topic
	if err := db.First(&got, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CategoryID == nil || *got.CategoryID != category {
		t.Fatalf("category=%v want=%d", got.CategoryID, category)
	}
	if got.Archetype != models.ArchetypeRegular {
		t.Fatalf("banner not demoted on publish: %s", got.Archetype)
	}
	if len(capture.events) != 1 || capture.events[0].Kind != events.KindPublish {
		t.Fatalf("events=%+v want one publish event", capture.events)
	}
}

func TestRunOnce_BumpEmitsEventOnly(t *testing.T) {
	r, db, capture := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusBump})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionApplied {
		t.Fatalf("applied=%+v", applied)
	}
	if len(capture.events) != 1 || capture.events[0].Kind != events.KindBump {
		t.Fatalf("events=%+v want one bump event", capture.events)
	}
}

func TestRunOnce_ReminderEmitsEventWithAuthor(t *testing.T) {
	r, db, capture := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	seedDue(t, db, models.StatusUpdate{
		TopicID: topic.ID, StatusType: models.StatusReminder, CreatedByID: 2,
	})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionApplied {
		t.Fatalf("applied=%+v want one applied transition", applied)
	}
	if len(capture.events) != 1 || capture.events[0].Kind != events.KindReminder {
		t.Fatalf("events=%+v want one reminder event", capture.events)
	}
	if got := capture.events[0].Payload["created_by_id"]; got != int64(2) {
		t.Fatalf("created_by_id=%v want=2", got)
	}

	var remaining int64
	if err := db.Model(&models.StatusUpdate{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("reminder row survived the sweep")
	}
}

func TestRunOnce_DestroySuccessRemovesRow(t *testing.T) {
	r, db, _ := setupReconciler(t)
	destroyer := &recordingDestroyer{}
	r.Destroyer = destroyer
	topicA := seedTopic(t, db, models.Topic{ID: 10})
	topicB := seedTopic(t, db, models.Topic{ID: 11})
	seedDue(t, db, models.StatusUpdate{TopicID: topicA.ID, StatusType: models.StatusDelete})
	seedDue(t, db, models.StatusUpdate{TopicID: topicB.ID, StatusType: models.StatusDeleteReplies})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("applied=%d want=2", len(applied))
	}
	for _, transition := range applied {
		if transition.Action != models.TransitionApplied {
			t.Fatalf("transition=%+v want applied", transition)
		}
	}
	if len(destroyer.topics) != 1 || destroyer.topics[0] != topicA.ID {
		t.Fatalf("destroyed topics=%v", destroyer.topics)
	}
	if len(destroyer.replies) != 1 || destroyer.replies[0] != topicB.ID {
		t.Fatalf("destroyed replies=%v", destroyer.replies)
	}

	var remaining int64
	if err := db.Model(&models.StatusUpdate{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("rows survived a successful destroy")
	}
}

func TestRunOnce_GoneTopicDropsRow(t *testing.T) {
	r, db, _ := setupReconciler(t)
	seedDue(t, db, models.StatusUpdate{TopicID: 999, StatusType: models.StatusClose})

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionFailed {
		t.Fatalf("applied=%+v want one failed transition", applied)
	}
	var remaining int64
	if err := db.Model(&models.StatusUpdate{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("row for a gone topic was kept")
	}
}

func TestRunOnce_TransientFailureReleasesForRetry(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	row := seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusDelete})
	r.Destroyer = failingDestroyer{err: errors.New("queue unavailable")}

	applied, err := r.RunOnce(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applied) != 1 || applied[0].Action != models.TransitionFailed {
		t.Fatalf("applied=%+v want one failed transition", applied)
	}

	var got models.StatusUpdate
	if err := db.First(&got, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("row deleted on transient failure: %v", err)
	}
	if got.ClaimedUntil != nil {
		t.Fatalf("lease not released for retry")
	}
}

func TestRunOnce_RecordsTransitionLog(t *testing.T) {
	r, db, _ := setupReconciler(t)
	topic := seedTopic(t, db, models.Topic{ID: 10})
	duration := 72
	seedDue(t, db, models.StatusUpdate{TopicID: topic.ID, StatusType: models.StatusClose, Duration: &duration})

	if _, err := r.RunOnce(context.Background(), sweepNow); err != nil {
		t.Fatalf("run: %v", err)
	}
	var rows []models.AppliedTransition
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("log rows=%d want=1", len(rows))
	}
	if rows[0].TopicID != topic.ID || rows[0].StatusType != models.StatusClose || rows[0].Action != models.TransitionApplied {
		t.Fatalf("log row=%+v", rows[0])
	}
}
