package status

import (
	"context"
	"errors"
)

// ErrNotPrivateMessage rejects archive operations on non-message
// topics.
var ErrNotPrivateMessage = errors.New("topic is not a private message")

// ArchiveMessage moves a private-message topic out of the user's inbox
// and out of the inbox of each of the given groups. Group membership is
// the caller's concern; commands arrive pre-authorized.
func (s *Service) ArchiveMessage(ctx context.Context, topicID, userID int64, groupIDs []int64) error {
	topic, err := s.Repo.GetTopicByID(ctx, topicID)
	if err != nil {
		return err
	}
	if !topic.PrivateMessage() {
		return ErrNotPrivateMessage
	}
	for _, groupID := range groupIDs {
		if err := s.Repo.ArchiveMessageForGroup(ctx, groupID, topicID); err != nil {
			return err
		}
	}
	return s.Repo.ArchiveMessageForUser(ctx, userID, topicID)
}

// MoveToInbox reverses ArchiveMessage.
func (s *Service) MoveToInbox(ctx context.Context, topicID, userID int64, groupIDs []int64) error {
	topic, err := s.Repo.GetTopicByID(ctx, topicID)
	if err != nil {
		return err
	}
	if !topic.PrivateMessage() {
		return ErrNotPrivateMessage
	}
	for _, groupID := range groupIDs {
		if err := s.Repo.MoveToInboxForGroup(ctx, groupID, topicID); err != nil {
			return err
		}
	}
	return s.Repo.MoveToInboxForUser(ctx, userID, topicID)
}
