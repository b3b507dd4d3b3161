package status

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum/internal/events"
	"forum/internal/models"
)

// MakeBanner promotes the topic to the sitewide banner. The invariant
// "at most one banner topic" is enforced inside one transaction: any
// current banner is demoted back to regular before the promotion, and
// dismissal markers pointing at the promoted topic are wiped.
func (s *Service) MakeBanner(ctx context.Context, topicID, actorID int64) error {
	topic, err := s.Repo.GetTopicByID(ctx, topicID)
	if err != nil {
		return err
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.Repo.DemoteBannersTx(ctx, tx, topicID); err != nil {
			return err
		}
		if _, err := s.Repo.SetTopicArchetypeTx(ctx, tx, topicID, models.ArchetypeRegular, models.ArchetypeBanner); err != nil {
			return err
		}
		_, err := s.Repo.ClearDismissedBannerKeysTx(ctx, tx, topicID)
		return err
	})
	if err != nil {
		return err
	}

	now := s.Clock.Now()
	if err := s.Events.Publish(ctx, events.New(events.KindBanner, topicID, now, map[string]any{
		"topic_id": topicID,
		"title":    topic.Title,
	})); err != nil {
		s.Logger.Warn("banner event publish failed", zap.Int64("topic_id", topicID), zap.Error(err))
	}
	return nil
}

// RemoveBanner demotes the topic and broadcasts the null banner so
// clients drop it.
func (s *Service) RemoveBanner(ctx context.Context, topicID, actorID int64) error {
	if _, err := s.Repo.GetTopicByID(ctx, topicID); err != nil {
		return err
	}

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.Repo.SetTopicArchetypeTx(ctx, tx, topicID, models.ArchetypeBanner, models.ArchetypeRegular); err != nil {
			return err
		}
		_, err := s.Repo.ClearDismissedBannerKeysTx(ctx, tx, topicID)
		return err
	})
	if err != nil {
		return err
	}

	if err := s.Events.Publish(ctx, events.New(events.KindBanner, topicID, s.Clock.Now(), nil)); err != nil {
		s.Logger.Warn("banner event publish failed", zap.Int64("topic_id", topicID), zap.Error(err))
	}
	return nil
}
