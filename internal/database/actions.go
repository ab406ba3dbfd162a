// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/partygames/internal/models"
)

// ActionLog persists historian batches.
type ActionLog struct {
	pool *pgxpool.Pool
}

func NewActionLog(pool *pgxpool.Pool) *ActionLog {
	return &ActionLog{pool: pool}
}

// SaveBatch writes every record in one transaction. Records already stored
// under the same id are skipped, so a redelivered batch is harmless.
func (l *ActionLog) SaveBatch(ctx context.Context, recs []models.ActionRecord) error {
	err := pgx.BeginTxFunc(ctx, l.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %s: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx save batch: %w", err)
	}
	return nil
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec models.ActionRecord) error {
	payload := "{}"
	if len(rec.Payload) > 0 {
		payload = string(rec.Payload)
	}
	q := `
		INSERT INTO room_actions (
			id, game, room_id, version, actor_id, action_type, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, q,
		rec.ID, rec.Game, rec.RoomID, rec.Version, rec.ActorID, rec.ActionType, payload,
		time.UnixMilli(rec.Timestamp),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 || rec.ActionType != models.ActionTypeRoundFinished {
		return nil
	}

	var result models.RoundResult
	if err := json.Unmarshal(rec.Payload, &result); err != nil {
		return fmt.Errorf("decode round result: %w", err)
	}
	colors := result.WinningColors
	if colors == nil {
		colors = []string{}
	}
	for _, p := range result.Players {
		q := `
			INSERT INTO round_results (
				action_id, room_id, player_id, name, money, won, lost, winning_colors
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := tx.Exec(ctx, q, rec.ID, rec.RoomID, p.PlayerID, p.Name, p.Money, p.Won, p.Lost, colors); err != nil {
			return err
		}
	}
	return nil
}
