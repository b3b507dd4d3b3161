package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisPublisher_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	pub := NewRedisPublisher(client, "forum")
	ctx := context.Background()

	sub := client.Subscribe(ctx, pub.Channel(KindTopicStatus))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sent := New(KindTopicStatus, 10, time.Date(2013, 11, 20, 8, 0, 0, 0, time.UTC), map[string]any{
		"status":  "closed",
		"enabled": true,
	})
	if err := pub.Publish(ctx, sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ID != sent.ID || got.Kind != KindTopicStatus || got.TopicID != 10 {
			t.Fatalf("got=%+v want=%+v", got, sent)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no message received")
	}
}

func TestRedisPublisher_ChannelPrefix(t *testing.T) {
	pub := NewRedisPublisher(nil, "")
	if got := pub.Channel(KindBump); got != "forum.bump" {
		t.Fatalf("channel=%q want=forum.bump", got)
	}
}
