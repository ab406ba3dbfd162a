// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for room action logs.
const DefaultQueueName = "partygames_actions"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and pings it once so misconfiguration fails at startup.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// QueueRecorder pushes action records onto a Redis list for the historian.
type QueueRecorder struct {
	rdb   *redis.Client
	queue string
}

// NewQueueRecorder returns a recorder writing to queue, or DefaultQueueName when empty.
func NewQueueRecorder(rdb *redis.Client, queue string) *QueueRecorder {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &QueueRecorder{rdb: rdb, queue: queue}
}

// Record serializes the record to JSON, then pushes it to the queue.
// This does not block the calling logic (other than a quick network send).
func (q *QueueRecorder) Record(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}
