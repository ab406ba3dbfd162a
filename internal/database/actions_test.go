package database

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a live Postgres; set DATABASE_URL to run.
func TestSaveBatchRoundResult(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))

	result, err := json.Marshal(models.RoundResult{
		RoomID:        "room1",
		WinningColors: []string{"red"},
		Players: []models.PlayerStanding{
			{PlayerID: "a", Name: "Ann", Money: 110, Won: 10},
			{PlayerID: "b", Name: "Ben", Money: 90, Lost: 10},
		},
	})
	require.NoError(t, err)

	id := uuid.NewString()
	recs := []models.ActionRecord{
		{ID: uuid.NewString(), Game: "color-majority", RoomID: "room1", Version: 4, ActorID: "b", ActionType: "play", Timestamp: time.Now().UnixMilli()},
		{ID: id, Game: "color-majority", RoomID: "room1", Version: 4, ActorID: "b", ActionType: models.ActionTypeRoundFinished, Payload: result, Timestamp: time.Now().UnixMilli()},
	}
	log := NewActionLog(pool)
	require.NoError(t, log.SaveBatch(ctx, recs))
	// redelivery is a no-op
	require.NoError(t, log.SaveBatch(ctx, recs))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM round_results WHERE action_id = $1`, id).Scan(&n))
	assert.Equal(t, 2, n)
}
