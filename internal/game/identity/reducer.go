// internal/game/identity/reducer.go
package identity

import (
	"fmt"

	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/ident"
)

// CreateRoom opens a session under a freshly generated room code.
func CreateRoom(hostID, hostName string) GameState {
	return NewRoom(ident.NewRoomCode(), hostID, hostName)
}

// NewRoom opens a session under roomID with the host as its only player.
func NewRoom(roomID, hostID, hostName string) GameState {
	return GameState{
		RoomID:  roomID,
		Status:  game.StatusLobby,
		Players: []Player{newPlayer(hostID, hostName)},
		HostID:  hostID,
	}
}

// JoinRoom adds a player in any status; there is no turn order to disturb.
// Rejoining with a known id returns s unchanged.
func JoinRoom(s GameState, playerID, playerName string) GameState {
	if s.PlayerIndex(playerID) >= 0 {
		return s
	}
	next := s.Clone()
	next.Players = append(next.Players, newPlayer(playerID, playerName))
	return next
}

// StartSession moves the room out of the lobby.
func StartSession(s GameState, requesterID string) (GameState, error) {
	if !IsHost(s, requesterID) {
		return GameState{}, fmt.Errorf("%w: only host can start", game.ErrUnauthorized)
	}
	next := s.Clone()
	next.Status = game.StatusPlaying
	return next, nil
}

// UpdateMap replaces authorID's map of subjectID wholesale.
func UpdateMap(s GameState, authorID, subjectID string, m Map) (GameState, error) {
	i := s.PlayerIndex(authorID)
	if i < 0 {
		return GameState{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, authorID)
	}
	next := s.Clone()
	next.Players[i].Maps[subjectID] = normalize(m)
	return next, nil
}

// SetPresenter points the room at presenterID's map of subjectID. A nil
// presenter clears both fields; a nil subject means the presenter's self-map.
func SetPresenter(s GameState, presenterID, subjectID *string) GameState {
	next := s.Clone()
	if presenterID == nil {
		next.PresenterID = nil
		next.PresentingSubjectID = nil
		return next
	}
	if subjectID == nil {
		subjectID = presenterID
	}
	next.PresenterID = cloneID(presenterID)
	next.PresentingSubjectID = cloneID(subjectID)
	return next
}

// KickPlayer lets the host remove another player.
func KickPlayer(s GameState, hostID, targetID string) (GameState, error) {
	if !IsHost(s, hostID) {
		return GameState{}, fmt.Errorf("%w: only host can kick players", game.ErrUnauthorized)
	}
	if hostID == targetID {
		return GameState{}, fmt.Errorf("%w: host cannot kick themselves", game.ErrUnauthorized)
	}
	idx := s.PlayerIndex(targetID)
	if idx < 0 {
		return GameState{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, targetID)
	}
	return withoutPlayer(s, idx), nil
}

// LeaveRoom removes playerID at their own request, promoting the
// earliest-joined remaining player when the host leaves.
func LeaveRoom(s GameState, playerID string) (GameState, error) {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return GameState{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, playerID)
	}
	next := withoutPlayer(s, idx)
	if next.HostID == playerID {
		next.HostID = ""
		if len(next.Players) > 0 {
			next.HostID = next.Players[0].ID
		}
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

// withoutPlayer drops the player, every map others authored about them, and
// the presenter pointer if it involved them.
func withoutPlayer(s GameState, idx int) GameState {
	next := s.Clone()
	targetID := next.Players[idx].ID
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	for i := range next.Players {
		delete(next.Players[i].Maps, targetID)
	}
	if isID(next.PresenterID, targetID) || isID(next.PresentingSubjectID, targetID) {
		next.PresenterID = nil
		next.PresentingSubjectID = nil
	}
	return next
}

func isID(id *string, want string) bool {
	return id != nil && *id == want
}

func normalize(m Map) Map {
	out := m.clone()
	if out.Given == nil {
		out.Given = []string{}
	}
	if out.Chosen == nil {
		out.Chosen = []string{}
	}
	if out.Core == nil {
		out.Core = []string{}
	}
	return out
}
