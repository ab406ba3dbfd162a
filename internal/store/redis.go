// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps rooms as JSON under "<prefix>:<roomID>". Every write refreshes
// the key's TTL so idle rooms expire on their own.
type Redis[T Versioned] struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis returns a store over rdb. A zero ttl keeps keys forever.
func NewRedis[T Versioned](rdb *redis.Client, prefix string, ttl time.Duration) *Redis[T] {
	return &Redis[T]{rdb: rdb, prefix: prefix, ttl: ttl}
}

var _ Store[Versioned] = (*Redis[Versioned])(nil)

func (r *Redis[T]) key(roomID string) string {
	return r.prefix + ":" + roomID
}

func (r *Redis[T]) Get(ctx context.Context, roomID string) (T, error) {
	var s T
	data, err := r.rdb.Get(ctx, r.key(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("redis get %s: %w", roomID, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return s, nil
}

func (r *Redis[T]) Put(ctx context.Context, roomID string, state T) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	if err := r.rdb.Set(ctx, r.key(roomID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", roomID, err)
	}
	return nil
}

// PutIfVersion watches the key so a concurrent writer aborts the transaction.
func (r *Redis[T]) PutIfVersion(ctx context.Context, roomID string, state T, expected int64) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	key := r.key(roomID)

	txf := func(tx *redis.Tx) error {
		var current int64
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var stored T
			if err := json.Unmarshal(raw, &stored); err != nil {
				return fmt.Errorf("decode room %s: %w", roomID, err)
			}
			current = stored.StateVersion()
		}
		if current != expected {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	err = r.rdb.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	if err != nil && !errors.Is(err, ErrVersionConflict) {
		return fmt.Errorf("redis cas %s: %w", roomID, err)
	}
	return err
}

func (r *Redis[T]) Delete(ctx context.Context, roomID string) error {
	if err := r.rdb.Del(ctx, r.key(roomID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", roomID, err)
	}
	return nil
}

func (r *Redis[T]) Exists(ctx context.Context, roomID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", roomID, err)
	}
	return n > 0, nil
}
