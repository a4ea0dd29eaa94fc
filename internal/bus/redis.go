package bus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a Bus backed by a shared *redis.Client. It is safe for
// concurrent use — every Session in the process publishes and subscribes
// through the same client.
type Redis struct {
	client *redis.Client
}

// NewRedis parses a redis:// URL and returns a ready client wrapped as a
// Bus, after confirming the connection is live.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Publish(ctx context.Context, channel string, message []byte) error {
	return r.client.Publish(ctx, channel, message).Err()
}

func (r *Redis) Subscribe(ctx context.Context, channel string) Subscription {
	return &redisSubscription{pubsub: r.client.Subscribe(ctx, channel)}
}

func (r *Redis) Channels(ctx context.Context, pattern string) ([]string, error) {
	return r.client.PubSubChannels(ctx, pattern).Result()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
}

func (s *redisSubscription) Receive(ctx context.Context) ([]byte, error) {
	msg, err := s.pubsub.ReceiveMessage(ctx)
	if err != nil {
		return nil, err
	}
	return []byte(msg.Payload), nil
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
