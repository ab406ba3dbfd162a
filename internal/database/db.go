package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool for databaseURL and pings it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS room_actions (
	id          TEXT PRIMARY KEY,
	game        TEXT NOT NULL,
	room_id     TEXT NOT NULL,
	version     BIGINT NOT NULL,
	actor_id    TEXT NOT NULL,
	action_type TEXT NOT NULL,
	payload     JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS room_actions_room_idx ON room_actions (room_id, version);

CREATE TABLE IF NOT EXISTS round_results (
	action_id      TEXT NOT NULL REFERENCES room_actions (id) ON DELETE CASCADE,
	room_id        TEXT NOT NULL,
	player_id      TEXT NOT NULL,
	name           TEXT NOT NULL,
	money          INTEGER NOT NULL,
	won            INTEGER NOT NULL DEFAULT 0,
	lost           INTEGER NOT NULL DEFAULT 0,
	winning_colors TEXT[] NOT NULL,
	PRIMARY KEY (action_id, player_id)
);
`

// Migrate creates the history tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
