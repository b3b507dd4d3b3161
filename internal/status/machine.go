package status

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"forum/internal/clock"
	"forum/internal/events"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/scheduler"
)

// ErrInvalidStatus rejects unknown status names.
var ErrInvalidStatus = errors.New("invalid status")

// Status names accepted by Apply.
const (
	StatusVisible        = "visible"
	StatusClosed         = "closed"
	StatusArchived       = "archived"
	StatusPinned         = "pinned"
	StatusPinnedGlobally = "pinned_globally"
)

// Service applies status transitions to topics. Every mutation is a
// conditional update keyed on the current value, so a repeated call and
// a racing writer both collapse to a no-op instead of a duplicate
// history post.
type Service struct {
	Repo      repository.Repository
	Clock     clock.Clock
	Events    events.Publisher
	Scheduler *scheduler.Scheduler
	Logger    *zap.Logger
}

// ApplyOptions carries the optional parts of a status command.
type ApplyOptions struct {
	// Until schedules the reverse transition; only honored when
	// closing.
	Until string
	// Duration is the stored hour count of the fired status update;
	// it drives the "closed after N days" wording.
	Duration *int
	// Automated marks transitions fired by the reconcile sweep rather
	// than a user command.
	Automated bool
}

// Result reports what Apply did.
type Result struct {
	Topic         *models.Topic
	HistoryPostID *int64
	Changed       bool
}

// Apply flips one status axis. Unchanged state is success without a
// history post.
func (s *Service) Apply(ctx context.Context, topicID int64, status string, enabled bool, actorID int64, opts ApplyOptions) (*Result, error) {
	changed, err := s.applyFlag(ctx, topicID, status, enabled)
	if err != nil {
		return nil, err
	}

	result := &Result{Changed: changed}
	now := s.Clock.Now()

	if changed {
		// History post failure must not undo the transition; the
		// current state wins over a complete audit trail.
		if post, err := s.Repo.CreateModeratorPost(ctx, topicID, actorID, transitionMessage(status, enabled, opts), now); err != nil {
			s.Logger.Warn("history post failed",
				zap.Int64("topic_id", topicID),
				zap.String("status", status),
				zap.Error(err))
		} else {
			result.HistoryPostID = &post.ID
		}

		if err := s.afterFlip(ctx, topicID, status, enabled, actorID, opts); err != nil {
			s.Logger.Warn("post-transition hook failed",
				zap.Int64("topic_id", topicID),
				zap.String("status", status),
				zap.Error(err))
		}

		if err := s.Events.Publish(ctx, events.New(events.KindTopicStatus, topicID, now, map[string]any{
			"status":  status,
			"enabled": enabled,
		})); err != nil {
			s.Logger.Warn("status event publish failed",
				zap.Int64("topic_id", topicID), zap.Error(err))
		}
	}

	topic, err := s.Repo.GetTopicByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	result.Topic = topic
	return result, nil
}

func (s *Service) applyFlag(ctx context.Context, topicID int64, status string, enabled bool) (bool, error) {
	switch status {
	case StatusVisible, StatusClosed, StatusArchived:
		return s.Repo.SetTopicFlag(ctx, topicID, status, enabled)
	case StatusPinned, StatusPinnedGlobally:
		if !enabled {
			return s.Repo.SetTopicPinned(ctx, topicID, nil, false)
		}
		at := s.Clock.Now()
		return s.Repo.SetTopicPinned(ctx, topicID, &at, status == StatusPinnedGlobally)
	default:
		return false, ErrInvalidStatus
	}
}

// afterFlip reconciles pending schedules with a flip that just
// happened: closing consumes any pending close, reopening consumes any
// pending open, and a close with an `until` books the reopen.
func (s *Service) afterFlip(ctx context.Context, topicID int64, status string, enabled bool, actorID int64, opts ApplyOptions) error {
	if status != StatusClosed || s.Scheduler == nil {
		return nil
	}
	if enabled {
		if err := s.Scheduler.Cancel(ctx, topicID, models.StatusClose); err != nil {
			return err
		}
		if opts.Until != "" {
			_, err := s.Scheduler.Schedule(ctx, topicID, models.StatusOpen, opts.Until, scheduler.Options{ActorID: &actorID})
			return err
		}
		return nil
	}
	return s.Scheduler.Cancel(ctx, topicID, models.StatusOpen)
}
