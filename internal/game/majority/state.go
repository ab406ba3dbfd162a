// internal/game/majority/state.go
package majority

import "github.com/jason-s-yu/partygames/internal/game"

const (
	StartingMoney             = 100
	HandSize                  = 5
	CardsPerColor             = 10
	PenaltyAmount             = 10
	NoRevealPenaltyMultiplier = 5
	MinPlayers                = 2
)

// Player is a seat in a color-majority room. Money persists across rounds.
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Hand          []Card `json:"hand"`
	Money         int    `json:"money"`
	RevealedCards []Card `json:"revealedCards"`
	HasPassed     bool   `json:"hasPassed"`
}

// Winner is a payout from the pot at the end of a round.
type Winner struct {
	PlayerID  string `json:"playerId"`
	AmountWon int    `json:"amountWon"`
}

// Loser is a penalty paid into the pot at the end of a round.
type Loser struct {
	PlayerID   string `json:"playerId"`
	AmountLost int    `json:"amountLost"`
}

// GameState is one room's full state. Players are in turn order.
// Values are treated as immutable: every operation returns a new state.
type GameState struct {
	RoomID             string      `json:"roomId"`
	Status             game.Status `json:"status"`
	Players            []Player    `json:"players"`
	Deck               []Card      `json:"deck"`
	CurrentPlayerIndex int         `json:"currentPlayerIndex"`
	ConsecutivePasses  int         `json:"consecutivePasses"`
	HostID             string      `json:"hostId"`
	Winners            []Winner    `json:"winners"`
	Losers             []Loser     `json:"losers"`

	// Version is bumped by the caller after each accepted operation.
	Version int64 `json:"version"`
}

// StateVersion reports the snapshot version for compare-and-swap stores.
func (s GameState) StateVersion() int64 { return s.Version }

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = cloneCards(p.Hand)
		p.RevealedCards = cloneCards(p.RevealedCards)
		out.Players[i] = p
	}
	out.Deck = cloneCards(s.Deck)
	if s.Winners != nil {
		out.Winners = append([]Winner{}, s.Winners...)
	}
	if s.Losers != nil {
		out.Losers = append([]Loser{}, s.Losers...)
	}
	return out
}

// IsHost reports whether actorID may perform host-only operations.
func IsHost(s GameState, actorID string) bool {
	return actorID != "" && s.HostID == actorID
}

// PlayerIndex returns the seat of playerID, or -1.
func (s GameState) PlayerIndex(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id.
func (s GameState) Player(playerID string) (Player, bool) {
	if i := s.PlayerIndex(playerID); i >= 0 {
		return s.Players[i], true
	}
	return Player{}, false
}

func newPlayer(id, name string) Player {
	return Player{
		ID:            id,
		Name:          name,
		Hand:          []Card{},
		Money:         StartingMoney,
		RevealedCards: []Card{},
	}
}
