package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"forum/internal/clock"
	"forum/internal/config"
	"forum/internal/events"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/status"
)

// errPermanent marks apply failures a retry cannot fix; the row is
// dropped instead of released.
var errPermanent = errors.New("permanent transition failure")

// PostDestroyer is the external collaborator that destroys topic
// content. A gone topic is success from the reconciler's point of view.
type PostDestroyer interface {
	DestroyTopic(ctx context.Context, topicID int64) error
	DestroyReplies(ctx context.Context, topicID int64) error
}

// NopDestroyer acknowledges destruction without doing anything; the
// default when no destruction collaborator is wired.
type NopDestroyer struct{}

func (NopDestroyer) DestroyTopic(context.Context, int64) error   { return nil }
func (NopDestroyer) DestroyReplies(context.Context, int64) error { return nil }

// Reconciler is the consistency sweep: each pass claims due status
// updates and applies them, so a schedule missed by a crashed worker is
// healed on the next tick.
type Reconciler struct {
	Repo      repository.Repository
	Status    *status.Service
	Events    events.Publisher
	Destroyer PostDestroyer
	Clock     clock.Clock
	Logger    *zap.Logger
	Config    config.ReconcilerConfig
}

// RunOnce performs a single sweep as of now and reports every row it
// touched. Per-row failures are logged and recorded, never raised: no
// caller is waiting on a sweep.
func (r *Reconciler) RunOnce(ctx context.Context, now time.Time) ([]models.AppliedTransition, error) {
	now = now.UTC()
	due, err := r.Repo.ListDueStatusUpdates(ctx, now, r.Config.BatchSize)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}

	// Rows for one topic must apply sequentially; regroup the
	// oldest-first listing by topic without disturbing row order.
	order := make([]int64, 0, len(due))
	byTopic := make(map[int64][]models.StatusUpdate, len(due))
	for _, row := range due {
		if _, seen := byTopic[row.TopicID]; !seen {
			order = append(order, row.TopicID)
		}
		byTopic[row.TopicID] = append(byTopic[row.TopicID], row)
	}

	lease := r.Config.ClaimLease
	if lease <= 0 {
		lease = 5 * time.Minute
	}

	var applied []models.AppliedTransition
	for _, topicID := range order {
		for _, row := range byTopic[topicID] {
			if ctx.Err() != nil {
				return applied, ctx.Err()
			}
			claimed, err := r.Repo.ClaimStatusUpdate(ctx, row.ID, now, now.Add(lease))
			if err != nil {
				r.Logger.Warn("claim failed", zap.Int64("status_update_id", row.ID), zap.Error(err))
				continue
			}
			if !claimed {
				continue
			}
			transition := r.process(ctx, row, now)
			if err := r.Repo.InsertAppliedTransition(ctx, &transition); err != nil {
				r.Logger.Warn("transition log insert failed",
					zap.Int64("status_update_id", row.ID), zap.Error(err))
			}
			applied = append(applied, transition)
		}
	}
	return applied, nil
}

// process applies one claimed row and settles its afterlife: delete on
// success or permanent failure, release for retry on transient failure.
func (r *Reconciler) process(ctx context.Context, row models.StatusUpdate, now time.Time) models.AppliedTransition {
	transition := models.AppliedTransition{
		StatusUpdateID: row.ID,
		TopicID:        row.TopicID,
		StatusType:     row.StatusType,
		AppliedAt:      now,
	}

	if deferred, until := r.deferForLastPost(ctx, row, now); deferred {
		transition.Action = models.TransitionSkipped
		transition.Detail = detail(map[string]any{"rescheduled_to": until})
		return transition
	}

	err := r.apply(ctx, row)
	switch {
	case err == nil:
		transition.Action = models.TransitionApplied
		if err := r.Repo.DeleteStatusUpdateByID(ctx, row.ID); err != nil {
			r.Logger.Warn("row delete failed", zap.Int64("status_update_id", row.ID), zap.Error(err))
		}
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, errPermanent):
		// The topic vanished or the row itself is malformed; nothing a
		// retry could fix.
		transition.Action = models.TransitionFailed
		transition.Detail = detail(map[string]any{"error": err.Error(), "permanent": true})
		if err := r.Repo.DeleteStatusUpdateByID(ctx, row.ID); err != nil {
			r.Logger.Warn("row delete failed", zap.Int64("status_update_id", row.ID), zap.Error(err))
		}
	default:
		transition.Action = models.TransitionFailed
		transition.Detail = detail(map[string]any{"error": err.Error()})
		r.Logger.Warn("transition failed, retrying next sweep",
			zap.Int64("topic_id", row.TopicID),
			zap.String("status_type", string(row.StatusType)),
			zap.Error(err))
		if err := r.Repo.ReleaseStatusUpdate(ctx, row.ID); err != nil {
			r.Logger.Warn("lease release failed", zap.Int64("status_update_id", row.ID), zap.Error(err))
		}
	}
	return transition
}

// deferForLastPost re-derives a based-on-last-post deadline right
// before firing; a reply that arrived after scheduling pushes the row
// forward instead of closing the topic under the poster's feet.
func (r *Reconciler) deferForLastPost(ctx context.Context, row models.StatusUpdate, now time.Time) (bool, time.Time) {
	if !r.Config.TrackLastPost || !row.BasedOnLastPost || row.Duration == nil {
		return false, time.Time{}
	}
	lastAt, err := r.Repo.LatestPostAt(ctx, row.TopicID)
	if err != nil || lastAt == nil {
		return false, time.Time{}
	}
	deadline := lastAt.UTC().Add(time.Duration(*row.Duration) * time.Hour)
	if !deadline.After(now) {
		return false, time.Time{}
	}
	if err := r.Repo.RescheduleStatusUpdate(ctx, row.ID, deadline); err != nil {
		r.Logger.Warn("reschedule failed", zap.Int64("status_update_id", row.ID), zap.Error(err))
	}
	return true, deadline
}

func (r *Reconciler) apply(ctx context.Context, row models.StatusUpdate) error {
	switch row.StatusType {
	case models.StatusClose:
		_, err := r.Status.Apply(ctx, row.TopicID, status.StatusClosed, true, models.SystemUserID, status.ApplyOptions{
			Automated: true,
			Duration:  row.Duration,
		})
		return err
	case models.StatusOpen:
		_, err := r.Status.Apply(ctx, row.TopicID, status.StatusClosed, false, models.SystemUserID, status.ApplyOptions{
			Automated: true,
		})
		return err
	case models.StatusPublishToCategory:
		return r.publishToCategory(ctx, row)
	case models.StatusDelete:
		return r.destroy(ctx, row.TopicID, r.Destroyer.DestroyTopic)
	case models.StatusDeleteReplies:
		return r.destroy(ctx, row.TopicID, r.Destroyer.DestroyReplies)
	case models.StatusReminder:
		return r.Events.Publish(ctx, events.New(events.KindReminder, row.TopicID, r.Clock.Now(), map[string]any{
			"created_by_id": row.CreatedByID,
		}))
	case models.StatusBump:
		return r.Events.Publish(ctx, events.New(events.KindBump, row.TopicID, r.Clock.Now(), nil))
	}
	// Unreachable while StatusTypes stays closed; a row written by a
	// newer schema version is permanent garbage here.
	return fmt.Errorf("%w: unknown status type %q", errPermanent, row.StatusType)
}

func (r *Reconciler) publishToCategory(ctx context.Context, row models.StatusUpdate) error {
	if row.CategoryID == nil {
		return fmt.Errorf("%w: publish_to_category without category", errPermanent)
	}
	topic, err := r.Repo.GetTopicByID(ctx, row.TopicID)
	if err != nil {
		return err
	}
	if err := r.Repo.SetTopicCategory(ctx, row.TopicID, *row.CategoryID); err != nil {
		return err
	}
	if topic.Archetype == models.ArchetypeBanner {
		err := r.Repo.InTx(ctx, func(tx *gorm.DB) error {
			_, err := r.Repo.SetTopicArchetypeTx(ctx, tx, row.TopicID, models.ArchetypeBanner, models.ArchetypeRegular)
			return err
		})
		if err != nil {
			return err
		}
	}
	return r.Events.Publish(ctx, events.New(events.KindPublish, row.TopicID, r.Clock.Now(), map[string]any{
		"category_id": *row.CategoryID,
	}))
}

// destroy treats an already-gone topic as done.
func (r *Reconciler) destroy(ctx context.Context, topicID int64, fn func(context.Context, int64) error) error {
	if err := fn(ctx, topicID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func detail(fields map[string]any) datatypes.JSON {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
