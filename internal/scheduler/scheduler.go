package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"forum/internal/clock"
	"forum/internal/config"
	"forum/internal/models"
	"forum/internal/repository"
)

// ErrPastExecuteAt marks a schedule whose resolved time is not in the
// future. Under the default past_action the row is persisted anyway and
// the error is returned alongside it; callers decide whether to surface
// it as a warning.
var ErrPastExecuteAt = errors.New("execute_at is not in the future")

// Scheduler turns status commands into StatusUpdate rows.
type Scheduler struct {
	Repo   repository.Repository
	Clock  clock.Clock
	Logger *zap.Logger
	Config config.SchedulerConfig
}

// Options carries the optional parts of a schedule command.
type Options struct {
	// ActorID is the invoking user; nil means unattributed, falling
	// back to the topic creator and then the system actor.
	ActorID         *int64
	TimezoneOffset  int
	BasedOnLastPost bool
	CategoryID      *int64
}

// Schedule creates or replaces the pending status update for
// (topicID, statusType). A blank timeSpec cancels: the existing row is
// removed and (nil, nil) returned; cancelling a missing row is a no-op.
func (s *Scheduler) Schedule(ctx context.Context, topicID int64, statusType models.StatusType, timeSpec string, opts Options) (*models.StatusUpdate, error) {
	timeSpec = strings.TrimSpace(timeSpec)
	if timeSpec == "" {
		_, err := s.Repo.DeleteStatusUpdate(ctx, topicID, statusType)
		return nil, err
	}

	now := s.Clock.Now()
	resolved, err := ResolveTimeSpec(timeSpec, now, opts.TimezoneOffset)
	if err != nil {
		return nil, err
	}

	topic, err := s.Repo.GetTopicByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	executeAt := resolved.ExecuteAt
	if opts.BasedOnLastPost && resolved.Duration != nil {
		executeAt, err = s.lastPostDeadline(ctx, topicID, *resolved.Duration, now)
		if err != nil {
			return nil, err
		}
	}

	createdBy, err := s.attribution(ctx, topic, opts.ActorID)
	if err != nil {
		return nil, err
	}

	past := !executeAt.After(now)
	if past && s.Config.PastAction == config.PastActionReject {
		return nil, ErrPastExecuteAt
	}

	item := &models.StatusUpdate{
		TopicID:         topicID,
		StatusType:      statusType,
		ExecuteAt:       executeAt,
		Duration:        resolved.Duration,
		BasedOnLastPost: opts.BasedOnLastPost && resolved.Duration != nil,
		CategoryID:      opts.CategoryID,
		CreatedByID:     createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.UpsertStatusUpdate(ctx, item); err != nil {
		return nil, err
	}

	// Re-read so the conflict path returns the surviving row (original
	// id and created_at) rather than the attempted insert.
	stored, err := s.Repo.GetStatusUpdate(ctx, topicID, statusType)
	if err != nil {
		return nil, err
	}
	if past {
		return stored, ErrPastExecuteAt
	}
	return stored, nil
}

// Cancel removes the pending update for (topicID, statusType).
func (s *Scheduler) Cancel(ctx context.Context, topicID int64, statusType models.StatusType) error {
	_, err := s.Repo.DeleteStatusUpdate(ctx, topicID, statusType)
	return err
}

// lastPostDeadline anchors the deadline to the latest reply; a topic
// with no posts anchors to now. Calling this repeatedly without new
// posts yields the same timestamp.
func (s *Scheduler) lastPostDeadline(ctx context.Context, topicID int64, durationHours int, now time.Time) (time.Time, error) {
	base := now
	lastAt, err := s.Repo.LatestPostAt(ctx, topicID)
	if err != nil {
		return time.Time{}, err
	}
	if lastAt != nil {
		base = lastAt.UTC()
	}
	return base.Add(time.Duration(durationHours) * time.Hour), nil
}

// attribution picks the recorded creator: the explicit actor when staff
// or at the top trust tier, else the topic creator under the same rule,
// else the system actor.
func (s *Scheduler) attribution(ctx context.Context, topic *models.Topic, actorID *int64) (int64, error) {
	candidates := make([]int64, 0, 2)
	if actorID != nil {
		candidates = append(candidates, *actorID)
	}
	if actorID == nil || *actorID != topic.UserID {
		candidates = append(candidates, topic.UserID)
	}
	for _, id := range candidates {
		user, err := s.Repo.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return 0, err
		}
		if user.StaffOrTopTrust() {
			return user.ID, nil
		}
	}
	return models.SystemUserID, nil
}
