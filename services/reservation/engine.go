package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	slotCountPrefix = "booking:slot:"
	slotLockPrefix  = "lock:slot:"

	// DefaultLockTTL bounds how long an abandoned hold can deny a slot.
	DefaultLockTTL = 300 * time.Second
)

// RedisSlotEngine implements SlotEngine on a shared Redis database. The key
// schema is shared with the deployed booking data and must not change:
// counters live at booking:slot:{date}:{hour}, locks at lock:slot:{date}:{hour}
// with the owning session id as value.
type RedisSlotEngine struct {
	client  *redis.Client
	lockTTL time.Duration
}

// NewRedisSlotEngine returns an engine over the given client. A non-positive
// ttl falls back to DefaultLockTTL.
func NewRedisSlotEngine(client *redis.Client, ttl time.Duration) *RedisSlotEngine {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisSlotEngine{client: client, lockTTL: ttl}
}

func countKey(date, hour string) string {
	return fmt.Sprintf("%s%s:%s", slotCountPrefix, date, hour)
}

func lockKey(date, hour string) string {
	return fmt.Sprintf("%s%s:%s", slotLockPrefix, date, hour)
}

// Count returns the confirmed-booking count for the slot.
func (e *RedisSlotEngine) Count(ctx context.Context, date, hour string) (int64, error) {
	n, err := e.client.Get(ctx, countKey(date, hour)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Increment bumps the confirmed-booking count and returns the new value.
func (e *RedisSlotEngine) Increment(ctx context.Context, date, hour string) (int64, error) {
	return e.client.Incr(ctx, countKey(date, hour)).Result()
}

// AcquireLock claims the slot lock for sessionID. Re-entry by the current
// holder refreshes the TTL; otherwise a SET NX with TTL arbitrates the race.
func (e *RedisSlotEngine) AcquireLock(ctx context.Context, date, hour, sessionID string) (bool, error) {
	key := lockKey(date, hour)

	holder, err := e.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return false, err
	}
	if holder == sessionID {
		if err := e.client.Expire(ctx, key, e.lockTTL).Err(); err != nil {
			return false, err
		}
		return true, nil
	}

	return e.client.SetNX(ctx, key, sessionID, e.lockTTL).Result()
}

// ReleaseLock deletes the lock entry only when sessionID is the holder;
// releasing someone else's hold is a silent no-op.
func (e *RedisSlotEngine) ReleaseLock(ctx context.Context, date, hour, sessionID string) error {
	key := lockKey(date, hour)

	holder, err := e.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if holder != sessionID {
		return nil
	}
	return e.client.Del(ctx, key).Err()
}
