package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher broadcasts events over redis pub/sub, one channel per
// kind ("<prefix>.<kind>"), so sibling processes can fan out to their
// own connected clients.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "forum"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.Channel(event.Kind), payload).Err()
}

func (p *RedisPublisher) Channel(kind string) string {
	return p.prefix + "." + kind
}
