// internal/game/majority/room.go
package majority

import (
	"fmt"

	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/ident"
)

// CreateRoom opens a lobby under a freshly generated room code.
func CreateRoom(hostID, hostName string) GameState {
	return NewRoom(ident.NewRoomCode(), hostID, hostName)
}

// NewRoom opens a lobby under roomID with the host as its only player.
func NewRoom(roomID, hostID, hostName string) GameState {
	return GameState{
		RoomID:  roomID,
		Status:  game.StatusLobby,
		Players: []Player{newPlayer(hostID, hostName)},
		Deck:    []Card{},
		HostID:  hostID,
	}
}

// JoinRoom seats a new player. Rejoining with a known id returns s unchanged.
func JoinRoom(s GameState, playerID, playerName string) (GameState, error) {
	if s.PlayerIndex(playerID) >= 0 {
		return s, nil
	}
	if s.Status != game.StatusLobby {
		return GameState{}, fmt.Errorf("%w: game already started", game.ErrInvalidState)
	}
	next := s.Clone()
	next.Players = append(next.Players, newPlayer(playerID, playerName))
	return next, nil
}

// AddPlayerSlot seats a placeholder player under a generated id, for players
// sharing the host's device. It returns the new player's id.
func AddPlayerSlot(s GameState, requesterID, playerName string) (GameState, string, error) {
	if !IsHost(s, requesterID) {
		return GameState{}, "", fmt.Errorf("%w: only host can add player slots", game.ErrUnauthorized)
	}
	if s.Status != game.StatusLobby {
		return GameState{}, "", fmt.Errorf("%w: game already started", game.ErrInvalidState)
	}
	id := ident.NewPlayerID()
	for s.PlayerIndex(id) >= 0 {
		id = ident.NewPlayerID()
	}
	next := s.Clone()
	next.Players = append(next.Players, newPlayer(id, playerName))
	return next, id, nil
}

// RemovePlayer lets the host remove another player. During a round the turn
// pointer is re-derived over the shrunk roster and the pass streak restarts.
func RemovePlayer(s GameState, requesterID, targetID string) (GameState, error) {
	if !IsHost(s, requesterID) {
		return GameState{}, fmt.Errorf("%w: only host can remove players", game.ErrUnauthorized)
	}
	if requesterID == targetID {
		return GameState{}, fmt.Errorf("%w: host cannot remove themselves", game.ErrUnauthorized)
	}
	idx := s.PlayerIndex(targetID)
	if idx < 0 {
		return GameState{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, targetID)
	}
	return withoutSeat(s, idx), nil
}

// LeaveRoom removes playerID at their own request. A departing host hands
// the room to the earliest-joined remaining player. The last player leaving
// produces an empty room with no host.
func LeaveRoom(s GameState, playerID string) (GameState, error) {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return GameState{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, playerID)
	}
	next := withoutSeat(s, idx)
	if next.HostID == playerID {
		next.HostID = ""
		if len(next.Players) > 0 {
			next.HostID = next.Players[0].ID
		}
	}
	return next, nil
}

func withoutSeat(s GameState, idx int) GameState {
	next := s.Clone()
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	if next.Status == game.StatusPlaying {
		next.CurrentPlayerIndex = turnAfterRemoval(s.CurrentPlayerIndex, idx, len(next.Players))
	}
	next.ConsecutivePasses = 0
	return next
}

// turnAfterRemoval shifts the pointer left when the removed seat was at or
// before it, then clamps into [0, remaining).
func turnAfterRemoval(current, removed, remaining int) int {
	if remaining == 0 {
		return 0
	}
	next := current
	if removed <= current && current > 0 {
		next = (current - 1) % remaining
	} else if next >= remaining {
		next = 0
	}
	return next
}

// StartRound deals a fresh shuffled deck, HandSize cards per player.
func StartRound(s GameState, requesterID string) (GameState, error) {
	return startRound(s, requesterID, ShuffledDeck())
}

func startRound(s GameState, requesterID string, deck []Card) (GameState, error) {
	if !IsHost(s, requesterID) {
		return GameState{}, fmt.Errorf("%w: only host can start", game.ErrUnauthorized)
	}
	if len(s.Players) < MinPlayers {
		return GameState{}, fmt.Errorf("%w: need at least %d players", game.ErrInsufficientPlayers, MinPlayers)
	}

	next := s.Clone()
	deck = cloneCards(deck)
	for i := range next.Players {
		p := &next.Players[i]
		p.Hand = make([]Card, 0, HandSize)
		p.RevealedCards = []Card{}
		p.HasPassed = false
		for j := 0; j < HandSize && len(deck) > 0; j++ {
			// deal from the top of the deck, which is its tail
			p.Hand = append(p.Hand, deck[len(deck)-1])
			deck = deck[:len(deck)-1]
		}
	}
	next.Deck = deck
	next.Status = game.StatusPlaying
	next.CurrentPlayerIndex = 0
	next.ConsecutivePasses = 0
	next.Winners = nil
	next.Losers = nil
	return next, nil
}

// ResetToLobby ends the round. Roster and money survive; hands, revealed
// cards and the deck are cleared.
func ResetToLobby(s GameState, requesterID string) (GameState, error) {
	if !IsHost(s, requesterID) {
		return GameState{}, fmt.Errorf("%w: only host can reset to lobby", game.ErrUnauthorized)
	}
	next := s.Clone()
	for i := range next.Players {
		next.Players[i].Hand = []Card{}
		next.Players[i].RevealedCards = []Card{}
		next.Players[i].HasPassed = false
	}
	next.Status = game.StatusLobby
	next.Deck = []Card{}
	next.CurrentPlayerIndex = 0
	next.ConsecutivePasses = 0
	next.Winners = nil
	next.Losers = nil
	return next, nil
}

// UpdatePlayerMoney overrides a player's balance. Any amount is accepted,
// negative included. An unknown target leaves the roster unchanged.
func UpdatePlayerMoney(s GameState, requesterID, targetID string, amount int) (GameState, error) {
	if !IsHost(s, requesterID) {
		return GameState{}, fmt.Errorf("%w: only host can edit money", game.ErrUnauthorized)
	}
	next := s.Clone()
	if i := next.PlayerIndex(targetID); i >= 0 {
		next.Players[i].Money = amount
	}
	return next, nil
}

// RenamePlayer changes a player's display name. Unknown ids are ignored.
func RenamePlayer(s GameState, playerID, name string) GameState {
	next := s.Clone()
	if i := next.PlayerIndex(playerID); i >= 0 {
		next.Players[i].Name = name
	}
	return next
}
