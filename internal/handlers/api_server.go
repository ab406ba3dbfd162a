// internal/handlers/api_server.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/game/identity"
	"github.com/jason-s-yu/partygames/internal/game/majority"
	"github.com/jason-s-yu/partygames/internal/history"
	"github.com/jason-s-yu/partygames/internal/ident"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/jason-s-yu/partygames/internal/realtime"
	"github.com/jason-s-yu/partygames/internal/store"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// Game names as they appear in /api/games/:game.
const (
	GameColorMajority = "color-majority"
	GameIdentityMap   = "identity-map"
)

// requestError is a malformed or incomplete request. Its message is shown
// to the client as is.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// Options wires the API to its collaborators. Recorder and Hub may be nil.
type Options struct {
	Logger       *logrus.Logger
	Majority     store.Store[majority.GameState]
	Identity     store.Store[identity.GameState]
	Hub          *realtime.Hub
	Recorder     history.Recorder
	StrictWrites bool
	PublicURL    string
}

// APIServer serves the room API for every game.
type APIServer struct {
	logger       *logrus.Logger
	hub          *realtime.Hub
	recorder     history.Recorder
	strictWrites bool
	publicURL    string

	games map[string]roomHandler
}

// roomHandler is one game's half of the API.
type roomHandler interface {
	serveAction(w http.ResponseWriter, r *http.Request, req actionRequest)
	serveGet(w http.ResponseWriter, r *http.Request, roomID string)
	serveWS(w http.ResponseWriter, r *http.Request, roomID string)
	exists(ctx context.Context, roomID string) (bool, error)
}

func NewAPIServer(opts Options) *APIServer {
	a := &APIServer{
		logger:       opts.Logger,
		hub:          opts.Hub,
		recorder:     opts.Recorder,
		strictWrites: opts.StrictWrites,
		publicURL:    opts.PublicURL,
	}
	if a.logger == nil {
		a.logger = logrus.StandardLogger()
	}
	if a.hub == nil {
		a.hub = realtime.NewHub(a.logger)
	}
	if a.recorder == nil {
		a.recorder = history.Nop{}
	}
	a.games = map[string]roomHandler{
		GameColorMajority: newMajorityRooms(a, opts.Majority),
		GameIdentityMap:   newIdentityRooms(a, opts.Identity),
	}
	return a
}

// Register mounts the API on router.
func (a *APIServer) Register(router *httprouter.Router) {
	router.POST("/api/games/:game", a.handleAction)
	router.GET("/api/games/:game", a.handleGet)
	router.GET("/api/games/:game/ws", a.handleWS)
	router.GET("/api/games/:game/qr", a.handleQR)
	router.GET("/healthz", a.handleHealth)
}

// actionRequest is the POST body shared by both games. Each action reads
// only the fields it needs.
type actionRequest struct {
	Action         string        `json:"action"`
	RoomID         string        `json:"roomId,omitempty"`
	PlayerID       string        `json:"playerId,omitempty"`
	PlayerName     string        `json:"playerName,omitempty"`
	SubAction      string        `json:"subAction,omitempty"`
	CardIDs        []string      `json:"cardIds,omitempty"`
	TargetPlayerID string        `json:"targetPlayerId,omitempty"`
	Amount         *int          `json:"amount,omitempty"`
	Map            *identity.Map `json:"map,omitempty"`
	PresenterID    *string       `json:"presenterId,omitempty"`
	SubjectID      *string       `json:"subjectId,omitempty"`
	Version        *int64        `json:"version,omitempty"`
}

// outcome carries ids an action hands back to the caller.
type outcome struct {
	playerID    string
	newPlayerID string
}

type actionResponse struct {
	Success     bool   `json:"success"`
	Game        any    `json:"game"`
	PlayerID    string `json:"playerId,omitempty"`
	NewPlayerID string `json:"newPlayerId,omitempty"`
}

func (a *APIServer) lookup(w http.ResponseWriter, ps httprouter.Params) (roomHandler, bool) {
	h, ok := a.games[ps.ByName("game")]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown game")
	}
	return h, ok
}

func (a *APIServer) handleAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h, ok := a.lookup(w, ps)
	if !ok {
		return
	}
	var req actionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.serveAction(w, r, req)
}

func (a *APIServer) handleGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h, ok := a.lookup(w, ps)
	if !ok {
		return
	}
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "Room ID required")
		return
	}
	h.serveGet(w, r, roomID)
}

func (a *APIServer) handleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h, ok := a.lookup(w, ps)
	if !ok {
		return
	}
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "Room ID required")
		return
	}
	h.serveWS(w, r, roomID)
}

func (a *APIServer) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// record hands an accepted action to the historian. Failures are logged only.
func (a *APIServer) record(ctx context.Context, rec models.ActionRecord) {
	rec.ID = uuid.NewString()
	rec.Timestamp = time.Now().UnixMilli()
	if err := a.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"game":   rec.Game,
			"room":   rec.RoomID,
			"action": rec.ActionType,
		}).Warn("failed to record action")
	}
}

// rooms implements roomHandler for one game's state type.
type rooms[T store.Versioned] struct {
	api   *APIServer
	name  string
	store store.Store[T]

	create      func(roomID, hostID, hostName string) T
	apply       func(req actionRequest, s T) (T, outcome, error)
	withVersion func(s T, v int64) T
	empty       func(s T) bool
	// roundResult reports a round that prev -> next just finished. Optional.
	roundResult func(prev, next T) *models.RoundResult
}

func (k *rooms[T]) exists(ctx context.Context, roomID string) (bool, error) {
	return k.store.Exists(ctx, roomID)
}

func (k *rooms[T]) serveGet(w http.ResponseWriter, r *http.Request, roomID string) {
	s, err := k.store.Get(r.Context(), roomID)
	if err != nil {
		k.api.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": s})
}

func (k *rooms[T]) serveWS(w http.ResponseWriter, r *http.Request, roomID string) {
	s, err := k.store.Get(r.Context(), roomID)
	if err != nil {
		k.api.writeErr(w, err)
		return
	}
	k.api.hub.ServeWS(w, r, k.name, roomID, s)
}

func (k *rooms[T]) serveAction(w http.ResponseWriter, r *http.Request, req actionRequest) {
	ctx := r.Context()
	log := k.api.logger.WithFields(logrus.Fields{"game": k.name, "action": req.Action})

	if req.Action == "create" {
		k.serveCreate(w, r, req)
		return
	}
	if req.RoomID == "" {
		writeError(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	log = log.WithField("room", req.RoomID)

	prev, err := k.store.Get(ctx, req.RoomID)
	if err != nil {
		k.api.writeErr(w, err)
		return
	}
	if req.Version != nil && *req.Version != prev.StateVersion() {
		k.api.writeErr(w, fmt.Errorf("%w: client has version %d, room is at %d", store.ErrVersionConflict, *req.Version, prev.StateVersion()))
		return
	}

	next, out, err := k.apply(req, prev)
	if err != nil {
		log.WithError(err).Debug("action rejected")
		k.api.writeErr(w, err)
		return
	}
	next = k.withVersion(next, prev.StateVersion()+1)

	if k.empty(next) {
		if err := k.store.Delete(ctx, req.RoomID); err != nil {
			k.api.writeErr(w, err)
			return
		}
		k.api.hub.Close(k.name, req.RoomID)
		log.Info("room emptied and deleted")
	} else {
		if k.api.strictWrites || req.Version != nil {
			err = k.store.PutIfVersion(ctx, req.RoomID, next, prev.StateVersion())
		} else {
			err = k.store.Put(ctx, req.RoomID, next)
		}
		if err != nil {
			k.api.writeErr(w, err)
			return
		}
		k.api.hub.Publish(k.name, req.RoomID, next)
	}

	actor := req.PlayerID
	if out.playerID != "" {
		actor = out.playerID
	}
	k.recordAction(ctx, req, actor, next)
	if k.roundResult != nil {
		if res := k.roundResult(prev, next); res != nil {
			payload, err := json.Marshal(res)
			if err == nil {
				k.api.record(ctx, models.ActionRecord{
					Game:       k.name,
					RoomID:     req.RoomID,
					Version:    next.StateVersion(),
					ActorID:    actor,
					ActionType: models.ActionTypeRoundFinished,
					Payload:    payload,
				})
			}
			log.WithField("version", next.StateVersion()).Info("round finished")
		}
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Success:     true,
		Game:        next,
		PlayerID:    out.playerID,
		NewPlayerID: out.newPlayerID,
	})
}

func (k *rooms[T]) serveCreate(w http.ResponseWriter, r *http.Request, req actionRequest) {
	ctx := r.Context()
	pid := req.PlayerID
	if pid == "" {
		pid = ident.NewPlayerID()
	}
	name := req.PlayerName
	if name == "" {
		name = "Host"
	}

	roomID := ident.UniqueRoomCode(func(code string) bool {
		ok, err := k.store.Exists(ctx, code)
		return err == nil && ok
	})
	s := k.withVersion(k.create(roomID, pid, name), 1)
	if err := k.store.PutIfVersion(ctx, roomID, s, 0); err != nil {
		k.api.writeErr(w, err)
		return
	}

	k.api.logger.WithFields(logrus.Fields{"game": k.name, "room": roomID, "player": pid}).Info("room created")
	req.RoomID = roomID
	k.recordAction(ctx, req, pid, s)
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Game: s, PlayerID: pid})
}

func (k *rooms[T]) recordAction(ctx context.Context, req actionRequest, actor string, s T) {
	payload, err := json.Marshal(req)
	if err != nil {
		payload = nil
	}
	k.api.record(ctx, models.ActionRecord{
		Game:       k.name,
		RoomID:     req.RoomID,
		Version:    s.StateVersion(),
		ActorID:    actor,
		ActionType: req.Action,
		Payload:    payload,
	})
}

// writeErr maps an error to its HTTP status.
func (a *APIServer) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, store.ErrNotFound):
		msg = "Room not found"
	case status == http.StatusInternalServerError:
		a.logger.WithError(err).Error("request failed")
		msg = "Internal server error"
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	case errors.As(err, new(*requestError)),
		errors.Is(err, game.ErrInvalidState),
		errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrInvalidCards),
		errors.Is(err, game.ErrColorMismatch),
		errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
