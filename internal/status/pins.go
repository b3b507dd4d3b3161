package status

import "context"

// ClearPin records that one user dismissed the topic's pin. The global
// pinned_at is untouched, no history post is written, and no staff
// check applies: any user who can see the topic may dismiss its pin.
func (s *Service) ClearPin(ctx context.Context, topicID, userID int64) error {
	topic, err := s.Repo.GetTopicByID(ctx, topicID)
	if err != nil {
		return err
	}
	if !topic.Pinned() {
		return nil
	}
	at := s.Clock.Now()
	return s.Repo.SetClearedPin(ctx, topicID, userID, &at)
}

// RePin drops the user's dismissal marker so the pin shows again.
func (s *Service) RePin(ctx context.Context, topicID, userID int64) error {
	if _, err := s.Repo.GetTopicByID(ctx, topicID); err != nil {
		return err
	}
	return s.Repo.SetClearedPin(ctx, topicID, userID, nil)
}
