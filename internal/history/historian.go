// internal/history/historian.go
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Source yields raw queued records. Pop returns nil, nil when nothing
// arrived within timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Sink persists a batch of records atomically.
type Sink interface {
	SaveBatch(ctx context.Context, recs []models.ActionRecord) error
}

// RedisSource pops from a Redis list with BLPOP.
type RedisSource struct {
	rdb   *redis.Client
	queue string
}

func NewRedisSource(rdb *redis.Client, queue string) *RedisSource {
	return &RedisSource{rdb: rdb, queue: queue}
}

func (s *RedisSource) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := s.rdb.BLPop(ctx, timeout, s.queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// Historian drains the action queue into the database in batches. A batch
// is flushed when it reaches BatchSize or FlushDelay has passed since the
// last flush, whichever comes first.
type Historian struct {
	Source     Source
	Sink       Sink
	BatchSize  int
	FlushDelay time.Duration
	Logger     *logrus.Logger

	batch     []models.ActionRecord
	lastFlush time.Time
}

// Run blocks until ctx is cancelled, then flushes what is left.
func (h *Historian) Run(ctx context.Context) {
	if h.BatchSize <= 0 {
		h.BatchSize = 20
	}
	if h.FlushDelay <= 0 {
		h.FlushDelay = 500 * time.Millisecond
	}
	h.batch = make([]models.ActionRecord, 0, h.BatchSize)
	h.lastFlush = time.Now()

	h.Logger.Info("historian started")
	defer h.Logger.Info("historian shutting down")

	for {
		if ctx.Err() != nil {
			h.flush(context.Background())
			return
		}

		payload, err := h.Source.Pop(ctx, h.FlushDelay)
		if err != nil && ctx.Err() == nil {
			h.Logger.WithError(err).Error("queue pop failed")
			// back off so a dead Redis does not spin the loop
			select {
			case <-ctx.Done():
			case <-time.After(h.FlushDelay):
			}
		}
		if payload != nil {
			var rec models.ActionRecord
			if err := json.Unmarshal(payload, &rec); err != nil {
				h.Logger.WithError(err).Warn("invalid action record")
			} else {
				h.batch = append(h.batch, rec)
			}
		}

		if len(h.batch) >= h.BatchSize || time.Since(h.lastFlush) >= h.FlushDelay {
			h.flush(ctx)
		}
	}
}

func (h *Historian) flush(ctx context.Context) {
	h.lastFlush = time.Now()
	if len(h.batch) == 0 {
		return
	}
	n := len(h.batch)
	err := h.Sink.SaveBatch(ctx, h.batch)
	h.batch = h.batch[:0]
	if err != nil {
		h.Logger.WithError(err).WithField("records", n).Error("flush failed, batch dropped")
		return
	}
	h.Logger.WithField("records", n).Debug("flushed actions")
}
