package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event kinds fanned out by the engine.
const (
	KindTopicStatus = "topic_status"
	KindBanner      = "banner"
	KindBump        = "bump"
	KindReminder    = "reminder"
	KindPublish     = "publish"
)

// Event is the envelope delivered to subscribers. Payload is nil for
// banner removal, matching the original null-banner broadcast.
type Event struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"`
	TopicID int64          `json:"topic_id"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// New stamps an envelope with a fresh id.
func New(kind string, topicID int64, at time.Time, payload map[string]any) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		TopicID: topicID,
		At:      at.UTC(),
		Payload: payload,
	}
}

// Publisher fans events out to connected clients. Delivery is
// best-effort: failures are the publisher's problem, never the status
// transition's.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every member, keeping the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
