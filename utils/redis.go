// File: utils/redis.go
package utils

import (
	"context"
	"log"
	"time"

	"voicetable/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SlotClient is the Redis client backing the slot reservation engine.
	SlotClient *redis.Client
	// QueueClient is the Redis client for the booking record queue.
	QueueClient *redis.Client
)

// InitSlotStore initializes the Redis client for slot counters and locks
// (using the slot DB from AppConfig).
func InitSlotStore() {
	SlotClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSlotDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SlotClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Slot Store): %v", err)
	}
}

// GetSlotClient returns the slot store client.
func GetSlotClient() *redis.Client {
	if SlotClient == nil {
		InitSlotStore()
	}
	return SlotClient
}

// InitQueueStore initializes the Redis client used by the record queue health checks
// (asynq holds its own connection pool on the same DB).
func InitQueueStore() {
	QueueClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := QueueClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Queue): %v", err)
	}
}

// GetQueueClient returns the queue client.
func GetQueueClient() *redis.Client {
	if QueueClient == nil {
		InitQueueStore()
	}
	return QueueClient
}
