// internal/history/recorder.go
package history

import (
	"context"

	"github.com/jason-s-yu/partygames/internal/models"
)

// Recorder accepts action records for asynchronous persistence.
type Recorder interface {
	Record(ctx context.Context, rec models.ActionRecord) error
}

// Nop discards every record. Used when no Redis queue is configured.
type Nop struct{}

func (Nop) Record(context.Context, models.ActionRecord) error { return nil }
