// Package dedup suppresses replayed request messages. Gateways may retry a
// publish after a timeout, and a duplicate mutation would otherwise be
// applied twice; a short-lived Redis key per (routing key, msg_id) pair
// marks messages already seen so replicas sharing the queue agree.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard reports whether a message has already been handled.
type Guard interface {
	// Seen records the message and reports whether it was already recorded
	// inside the retention window.
	Seen(ctx context.Context, routingKey string, msgID int64) (bool, error)
	Close() error
}

type redisGuard struct {
	client   *redis.Client
	ttl      time.Duration
	disabled bool
}

// NewRedisGuard connects to Redis and returns a guard retaining message ids
// for the given window. A disabled guard never reports duplicates.
func NewRedisGuard(redisURL string, ttl time.Duration, disabled bool) (Guard, error) {
	if disabled {
		return &redisGuard{disabled: true}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewGuard(client, ttl), nil
}

// NewGuard wraps an existing Redis client. Used directly by tests.
func NewGuard(client *redis.Client, ttl time.Duration) Guard {
	return &redisGuard{client: client, ttl: ttl}
}

// Seen atomically claims the message key. A failed claim means another
// handler got there first inside the retention window.
func (g *redisGuard) Seen(ctx context.Context, routingKey string, msgID int64) (bool, error) {
	if g.disabled {
		return false, nil
	}

	key := fmt.Sprintf("dedup:%s:%d", routingKey, msgID)
	claimed, err := g.client.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check failed: %w", err)
	}
	return !claimed, nil
}

func (g *redisGuard) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// NoOpGuard never reports duplicates (for testing or disabled deduplication).
type NoOpGuard struct{}

func (n *NoOpGuard) Seen(ctx context.Context, routingKey string, msgID int64) (bool, error) {
	return false, nil
}

func (n *NoOpGuard) Close() error {
	return nil
}
