package cache

import (
	"context"
	"sort"
	"testing"

	"github.com/redis/go-redis/v9"
)

// Integration tests - require Redis running on localhost:6379.
const testRedisAddr = "localhost:6379"

// setupTestCounter creates a counter for testing against a throwaway key
// prefix. Skips the test when no Redis server is reachable.
func setupTestCounter(t *testing.T) (*RedisClickCounter, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := "linkshort-test:" + t.Name() + ":"
	cleanup := func() {
		var cursor uint64
		for {
			keys, next, err := client.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				break
			}
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
		client.Close()
	}

	return NewRedisClickCounter(client, prefix), cleanup
}

func TestIncrementAndTakeCount(t *testing.T) {
	counter, cleanup := setupTestCounter(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := counter.Increment(ctx, "link-a"); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}

	count, err := counter.TakeCount(ctx, "link-a")
	if err != nil {
		t.Fatalf("TakeCount() error = %v", err)
	}
	if count != 5 {
		t.Errorf("TakeCount() = %d, want 5", count)
	}

	// The key is gone after the take; a second take yields zero
	count, err = counter.TakeCount(ctx, "link-a")
	if err != nil {
		t.Fatalf("TakeCount() on drained key error = %v", err)
	}
	if count != 0 {
		t.Errorf("TakeCount() on drained key = %d, want 0", count)
	}
}

func TestTakeCountMissingKey(t *testing.T) {
	counter, cleanup := setupTestCounter(t)
	defer cleanup()

	count, err := counter.TakeCount(context.Background(), "never-clicked")
	if err != nil {
		t.Fatalf("TakeCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("TakeCount() = %d, want 0 for missing key", count)
	}
}

func TestPendingLinkIDs(t *testing.T) {
	counter, cleanup := setupTestCounter(t)
	defer cleanup()

	ctx := context.Background()
	want := []string{"link-a", "link-b", "link-c"}
	for _, id := range want {
		if err := counter.Increment(ctx, id); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}

	ids, err := counter.PendingLinkIDs(ctx)
	if err != nil {
		t.Fatalf("PendingLinkIDs() error = %v", err)
	}
	sort.Strings(ids)
	if len(ids) != len(want) {
		t.Fatalf("PendingLinkIDs() returned %d ids, want %d", len(ids), len(want))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("PendingLinkIDs()[%d] = %q, want %q", i, ids[i], id)
		}
	}
}

func TestRemove(t *testing.T) {
	counter, cleanup := setupTestCounter(t)
	defer cleanup()

	ctx := context.Background()
	if err := counter.Increment(ctx, "link-a"); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if err := counter.Remove(ctx, "link-a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	ids, err := counter.PendingLinkIDs(ctx)
	if err != nil {
		t.Fatalf("PendingLinkIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("PendingLinkIDs() after Remove = %v, want empty", ids)
	}
}
