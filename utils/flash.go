package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const flashKeyPrefix = "flash:"

// Flash levels understood by the frontend.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown to the visitor on their next page view.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// FlashStore queues flashes per browser session.
type FlashStore interface {
	Add(ctx context.Context, sessionID string, f Flash) error
	// Pop returns and clears every queued flash for the session.
	Pop(ctx context.Context, sessionID string) ([]Flash, error)
}

// RedisFlashStore keeps flashes in a Redis list per session.
type RedisFlashStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFlashStore creates a FlashStore; queued flashes expire after ttl.
func NewRedisFlashStore(client *redis.Client, ttl time.Duration) *RedisFlashStore {
	return &RedisFlashStore{client: client, ttl: ttl}
}

func (s *RedisFlashStore) Add(ctx context.Context, sessionID string, f Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}
	key := flashKeyPrefix + sessionID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store flash: %w", err)
	}
	return nil
}

func (s *RedisFlashStore) Pop(ctx context.Context, sessionID string) ([]Flash, error) {
	key := flashKeyPrefix + sessionID
	var items *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read flashes: %w", err)
	}

	flashes := make([]Flash, 0, len(items.Val()))
	for _, raw := range items.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
