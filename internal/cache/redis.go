package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const eventKeyPrefix = "webhook:event:"

// RedisEventLedger remembers processed webhook event IDs in Redis so that a
// redelivered event is not applied twice.
type RedisEventLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEventLedger parses redisURL, checks connectivity and returns a ledger
// whose entries expire after ttl.
func NewRedisEventLedger(ctx context.Context, redisURL string, ttl time.Duration) (*RedisEventLedger, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("event ledger ttl must be positive, got %s", ttl)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisEventLedger{client: client, ttl: ttl}, nil
}

// Seen reports whether eventID was already remembered.
func (l *RedisEventLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, eventKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// Remember records eventID as processed.
func (l *RedisEventLedger) Remember(ctx context.Context, eventID string) error {
	if err := l.client.Set(ctx, eventKeyPrefix+eventID, time.Now().UTC().Unix(), l.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (l *RedisEventLedger) Close() error {
	return l.client.Close()
}
