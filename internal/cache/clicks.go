// Package cache provides the Redis-backed click counter that absorbs
// redirect traffic between flush cycles, so the hot redirect path never
// writes to the relational store.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClickCounter accumulates pending click counts per link id.
// Increment must be atomic per key; TakeCount must atomically read and clear
// a key so that a click arriving mid-flush is never lost.
type ClickCounter interface {
	Increment(ctx context.Context, linkID string) error
	PendingLinkIDs(ctx context.Context) ([]string, error)
	TakeCount(ctx context.Context, linkID string) (int64, error)
	Remove(ctx context.Context, linkID string) error
}

// RedisClickCounter is the ClickCounter implementation backed by Redis.
// Each pending counter lives under <prefix><link id>, e.g. "link-<uuid>".
type RedisClickCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisClickCounter creates a counter on top of an existing Redis client.
func NewRedisClickCounter(client *redis.Client, prefix string) *RedisClickCounter {
	return &RedisClickCounter{client: client, prefix: prefix}
}

// NewRedisClient builds a Redis client and verifies connectivity with a ping.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Increment adds one pending click for the given link id.
// INCR creates the key at 1 on first use, so there is no separate "create"
// step for a link's first click after a flush.
func (c *RedisClickCounter) Increment(ctx context.Context, linkID string) error {
	if err := c.client.Incr(ctx, c.prefix+linkID).Err(); err != nil {
		return fmt.Errorf("failed to increment clicks for link %s: %w", linkID, err)
	}
	return nil
}

// PendingLinkIDs returns the ids of every link with unflushed clicks.
// SCAN is used instead of KEYS to avoid blocking Redis on large keyspaces.
func (c *RedisClickCounter) PendingLinkIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending click keys: %w", err)
		}
		for _, key := range keys {
			ids = append(ids, strings.TrimPrefix(key, c.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

// TakeCount atomically reads and removes the pending count for a link.
// GETDEL closes the read-then-delete window, so a concurrent Increment either
// lands before the flush (and is counted) or after it (and stays pending).
// Returns 0 when the key no longer exists.
func (c *RedisClickCounter) TakeCount(ctx context.Context, linkID string) (int64, error) {
	count, err := c.client.GetDel(ctx, c.prefix+linkID).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to take click count for link %s: %w", linkID, err)
	}
	return count, nil
}

// Remove discards the pending count for a link without reading it.
// Used when the link itself has disappeared and the clicks have nowhere to go.
func (c *RedisClickCounter) Remove(ctx context.Context, linkID string) error {
	if err := c.client.Del(ctx, c.prefix+linkID).Err(); err != nil {
		return fmt.Errorf("failed to remove click counter for link %s: %w", linkID, err)
	}
	return nil
}
