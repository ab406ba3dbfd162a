// internal/handlers/identity.go
package handlers

import (
	"github.com/jason-s-yu/partygames/internal/game/identity"
	"github.com/jason-s-yu/partygames/internal/ident"
	"github.com/jason-s-yu/partygames/internal/store"
)

func newIdentityRooms(a *APIServer, st store.Store[identity.GameState]) *rooms[identity.GameState] {
	return &rooms[identity.GameState]{
		api:    a,
		name:   GameIdentityMap,
		store:  st,
		create: identity.NewRoom,
		apply:  applyIdentity,
		withVersion: func(s identity.GameState, v int64) identity.GameState {
			s.Version = v
			return s
		},
		empty: func(s identity.GameState) bool { return len(s.Players) == 0 },
	}
}

func applyIdentity(req actionRequest, s identity.GameState) (identity.GameState, outcome, error) {
	switch req.Action {
	case "join":
		pid := req.PlayerID
		if pid == "" {
			pid = ident.NewPlayerID()
		}
		name := req.PlayerName
		if name == "" {
			name = "Player"
		}
		return identity.JoinRoom(s, pid, name), outcome{playerID: pid}, nil

	case "update_map":
		if req.PlayerID == "" || req.SubjectID == nil || *req.SubjectID == "" || req.Map == nil {
			return s, outcome{}, badRequest("Missing parameters")
		}
		next, err := identity.UpdateMap(s, req.PlayerID, *req.SubjectID, *req.Map)
		return next, outcome{}, err

	case "set_presenter":
		// a null presenterId stops sharing
		return identity.SetPresenter(s, emptyToNil(req.PresenterID), emptyToNil(req.SubjectID)), outcome{}, nil
	}

	if req.PlayerID == "" {
		return s, outcome{}, badRequest("Missing parameters")
	}

	var (
		next identity.GameState
		err  error
	)
	switch req.Action {
	case "start":
		next, err = identity.StartSession(s, req.PlayerID)
	case "kick":
		if req.TargetPlayerID == "" {
			return s, outcome{}, badRequest("Missing parameters")
		}
		next, err = identity.KickPlayer(s, req.PlayerID, req.TargetPlayerID)
	case "rename":
		if req.PlayerName == "" {
			return s, outcome{}, badRequest("Missing parameters")
		}
		next = identity.RenamePlayer(s, req.PlayerID, req.PlayerName)
	case "leave":
		next, err = identity.LeaveRoom(s, req.PlayerID)
	default:
		return s, outcome{}, badRequest("Invalid action")
	}
	return next, outcome{}, err
}

func emptyToNil(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
