package models

import "encoding/json"

// ActionTypeRoundFinished marks the record emitted when a color-majority
// round is scored. Its payload is a RoundResult.
const ActionTypeRoundFinished = "round_finished"

// ActionRecord holds the minimal info the historian needs about one accepted
// room operation.
type ActionRecord struct {
	ID         string          `json:"id"`
	Game       string          `json:"game"`
	RoomID     string          `json:"room_id"`
	Version    int64           `json:"version"`
	ActorID    string          `json:"actor_id"`
	ActionType string          `json:"action_type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  int64           `json:"timestamp"` // epoch millis
}

// RoundResult is the outcome of one scored color-majority round.
type RoundResult struct {
	RoomID        string           `json:"room_id"`
	WinningColors []string         `json:"winning_colors"`
	Players       []PlayerStanding `json:"players"`
}

// PlayerStanding is one player's balance after a round, and whether they won,
// lost, or neither.
type PlayerStanding struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Money    int    `json:"money"`
	Won      int    `json:"won,omitempty"`
	Lost     int    `json:"lost,omitempty"`
}
