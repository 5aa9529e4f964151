// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// # Redis Backend

// RedisSlot persists the token value under a fixed Redis key. It serves
// headless deployments (bots, schedulers) that have no profile directory
// but already run next to a Redis instance.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot creates a Redis-backed slot for the given key.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

// Read returns the stored value, if any. redis.Nil is the valid absent
// state, not an error.
func (slot *RedisSlot) Read(context context.Context) (string, bool, error) {
	value, err := slot.client.Get(context, slot.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: redis read failed: %w", err)
	}
	return value, true, nil
}

// Write replaces the slot value wholesale. No TTL is applied: the token
// carries its own expiry and the session store clears stale values itself.
func (slot *RedisSlot) Write(context context.Context, value string) error {
	if err := slot.client.Set(context, slot.key, value, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis write failed: %w", err)
	}
	return nil
}

// Clear removes the slot value.
func (slot *RedisSlot) Clear(context context.Context) error {
	if err := slot.client.Del(context, slot.key).Err(); err != nil {
		return fmt.Errorf("storage: redis clear failed: %w", err)
	}
	return nil
}
