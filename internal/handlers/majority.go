// internal/handlers/majority.go
package handlers

import (
	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/game/majority"
	"github.com/jason-s-yu/partygames/internal/ident"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/jason-s-yu/partygames/internal/store"
)

func newMajorityRooms(a *APIServer, st store.Store[majority.GameState]) *rooms[majority.GameState] {
	return &rooms[majority.GameState]{
		api:    a,
		name:   GameColorMajority,
		store:  st,
		create: majority.NewRoom,
		apply:  applyMajority,
		withVersion: func(s majority.GameState, v int64) majority.GameState {
			s.Version = v
			return s
		},
		empty:       func(s majority.GameState) bool { return len(s.Players) == 0 },
		roundResult: majorityRoundResult,
	}
}

func applyMajority(req actionRequest, s majority.GameState) (majority.GameState, outcome, error) {
	if req.Action == "join" {
		pid := req.PlayerID
		if pid == "" {
			pid = ident.NewPlayerID()
		}
		name := req.PlayerName
		if name == "" {
			name = "Player"
		}
		next, err := majority.JoinRoom(s, pid, name)
		return next, outcome{playerID: pid}, err
	}

	// everything else acts on behalf of a known player
	if req.PlayerID == "" {
		return s, outcome{}, badRequest("Missing parameters")
	}

	var (
		next majority.GameState
		out  outcome
		err  error
	)
	switch req.Action {
	case "start":
		next, err = majority.StartRound(s, req.PlayerID)
	case "play":
		var move game.Move
		move, err = game.ParseMove(req.SubAction, req.CardIDs)
		if err != nil {
			return s, out, err
		}
		next, err = majority.PlayTurn(s, req.PlayerID, move)
	case "create-slot":
		name := req.PlayerName
		if name == "" {
			name = "New Player"
		}
		next, out.newPlayerID, err = majority.AddPlayerSlot(s, req.PlayerID, name)
	case "remove-player":
		if req.TargetPlayerID == "" {
			return s, out, badRequest("Missing parameters")
		}
		next, err = majority.RemovePlayer(s, req.PlayerID, req.TargetPlayerID)
	case "reset-to-lobby":
		next, err = majority.ResetToLobby(s, req.PlayerID)
	case "update-money":
		if req.TargetPlayerID == "" || req.Amount == nil {
			return s, out, badRequest("Missing parameters")
		}
		next, err = majority.UpdatePlayerMoney(s, req.PlayerID, req.TargetPlayerID, *req.Amount)
	case "rename":
		if req.PlayerName == "" {
			return s, out, badRequest("Missing parameters")
		}
		next = majority.RenamePlayer(s, req.PlayerID, req.PlayerName)
	case "leave":
		next, err = majority.LeaveRoom(s, req.PlayerID)
	default:
		return s, out, badRequest("Invalid action")
	}
	return next, out, err
}

// majorityRoundResult summarizes a round that was scored by this transition.
func majorityRoundResult(prev, next majority.GameState) *models.RoundResult {
	if prev.Status != game.StatusPlaying || next.Status != game.StatusFinished {
		return nil
	}
	won := make(map[string]int, len(next.Winners))
	for _, w := range next.Winners {
		won[w.PlayerID] = w.AmountWon
	}
	lost := make(map[string]int, len(next.Losers))
	for _, l := range next.Losers {
		lost[l.PlayerID] = l.AmountLost
	}

	res := &models.RoundResult{
		RoomID:        next.RoomID,
		WinningColors: []string{},
		Players:       make([]models.PlayerStanding, 0, len(next.Players)),
	}
	for _, c := range majority.WinningColors(next) {
		res.WinningColors = append(res.WinningColors, string(c))
	}
	for _, p := range next.Players {
		res.Players = append(res.Players, models.PlayerStanding{
			PlayerID: p.ID,
			Name:     p.Name,
			Money:    p.Money,
			Won:      won[p.ID],
			Lost:     lost[p.ID],
		})
	}
	return res
}
