// internal/game/identity/state.go
package identity

import "github.com/jason-s-yu/partygames/internal/game"

// Map is one author's view of a subject. Entries keep insertion order.
type Map struct {
	Given  []string `json:"given"`
	Chosen []string `json:"chosen"`
	Core   []string `json:"core"`
}

// EmptyMap returns a map with no traits.
func EmptyMap() Map {
	return Map{Given: []string{}, Chosen: []string{}, Core: []string{}}
}

func (m Map) clone() Map {
	return Map{
		Given:  cloneStrings(m.Given),
		Chosen: cloneStrings(m.Chosen),
		Core:   cloneStrings(m.Core),
	}
}

// Player authors maps keyed by subject player id; their own id is the self-map.
type Player struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Maps map[string]Map `json:"maps"`
}

// GameState is one identity-map room. PresentingSubjectID is set exactly
// when PresenterID is set.
type GameState struct {
	RoomID              string      `json:"roomId"`
	Status              game.Status `json:"status"`
	Players             []Player    `json:"players"`
	HostID              string      `json:"hostId"`
	PresenterID         *string     `json:"presenterId"`
	PresentingSubjectID *string     `json:"presentingSubjectId"`

	Version int64 `json:"version"`
}

// StateVersion reports the snapshot version for compare-and-swap stores.
func (s GameState) StateVersion() int64 { return s.Version }

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		maps := make(map[string]Map, len(p.Maps))
		for k, m := range p.Maps {
			maps[k] = m.clone()
		}
		p.Maps = maps
		out.Players[i] = p
	}
	out.PresenterID = cloneID(s.PresenterID)
	out.PresentingSubjectID = cloneID(s.PresentingSubjectID)
	return out
}

// IsHost reports whether actorID may perform host-only operations.
func IsHost(s GameState, actorID string) bool {
	return actorID != "" && s.HostID == actorID
}

// PlayerIndex returns the position of playerID, or -1.
func (s GameState) PlayerIndex(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// PresentedMap returns the map currently broadcast for shared viewing.
func (s GameState) PresentedMap() (Map, bool) {
	if s.PresenterID == nil || s.PresentingSubjectID == nil {
		return Map{}, false
	}
	i := s.PlayerIndex(*s.PresenterID)
	if i < 0 {
		return Map{}, false
	}
	m, ok := s.Players[i].Maps[*s.PresentingSubjectID]
	return m, ok
}

func newPlayer(id, name string) Player {
	return Player{ID: id, Name: name, Maps: map[string]Map{}}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
