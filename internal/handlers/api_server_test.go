// internal/handlers/api_server_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/game/identity"
	"github.com/jason-s-yu/partygames/internal/game/majority"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/jason-s-yu/partygames/internal/store"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	mu   sync.Mutex
	recs []models.ActionRecord
}

func (m *memRecorder) Record(_ context.Context, rec models.ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memRecorder) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r.ActionType)
	}
	return out
}

type testAPI struct {
	router   *httprouter.Router
	majority *store.Memory[majority.GameState]
	identity *store.Memory[identity.GameState]
	recorder *memRecorder
}

func newTestAPI(strict bool) *testAPI {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ta := &testAPI{
		router:   httprouter.New(),
		majority: store.NewMemory[majority.GameState](),
		identity: store.NewMemory[identity.GameState](),
		recorder: &memRecorder{},
	}
	NewAPIServer(Options{
		Logger:       logger,
		Majority:     ta.majority,
		Identity:     ta.identity,
		Recorder:     ta.recorder,
		StrictWrites: strict,
		PublicURL:    "https://party.example",
	}).Register(ta.router)
	return ta
}

func (ta *testAPI) post(t *testing.T, gameName string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/games/"+gameName, bytes.NewReader(data))
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

type majorityResponse struct {
	Success     bool               `json:"success"`
	Game        majority.GameState `json:"game"`
	PlayerID    string             `json:"playerId"`
	NewPlayerID string             `json:"newPlayerId"`
	Error       string             `json:"error"`
}

func decodeMajority(t *testing.T, w *httptest.ResponseRecorder) majorityResponse {
	t.Helper()
	var resp majorityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// setupMajorityRoom creates a room with a host and one joined player.
func setupMajorityRoom(t *testing.T, ta *testAPI) (roomID, hostID, guestID string) {
	t.Helper()
	w := ta.post(t, GameColorMajority, map[string]any{"action": "create", "playerName": "Ann"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeMajority(t, w)
	require.True(t, created.Success)
	require.NotEmpty(t, created.PlayerID)
	assert.Equal(t, int64(1), created.Game.Version)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "join", "roomId": created.Game.RoomID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decodeMajority(t, w)
	require.Len(t, joined.Game.Players, 2)
	assert.Equal(t, "Player", joined.Game.Players[1].Name)
	return created.Game.RoomID, created.PlayerID, joined.PlayerID
}

func TestMajorityRoundOverHTTP(t *testing.T) {
	ta := newTestAPI(false)
	roomID, hostID, guestID := setupMajorityRoom(t, ta)

	w := ta.post(t, GameColorMajority, map[string]any{"action": "start", "roomId": roomID, "playerId": guestID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "start", "roomId": roomID, "playerId": hostID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	started := decodeMajority(t, w)
	assert.Equal(t, game.StatusPlaying, started.Game.Status)
	assert.Equal(t, int64(3), started.Game.Version)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "play", "roomId": roomID, "playerId": guestID, "subAction": "skip"})
	assert.Equal(t, http.StatusConflict, w.Code, "out of turn")

	w = ta.post(t, GameColorMajority, map[string]any{"action": "play", "roomId": roomID, "playerId": hostID, "subAction": "dance"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	card := started.Game.Players[0].Hand[0]
	w = ta.post(t, GameColorMajority, map[string]any{"action": "play", "roomId": roomID, "playerId": hostID, "subAction": "reveal", "cardIds": []string{card.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ta.post(t, GameColorMajority, map[string]any{"action": "play", "roomId": roomID, "playerId": guestID, "subAction": "skip"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ta.post(t, GameColorMajority, map[string]any{"action": "play", "roomId": roomID, "playerId": hostID, "subAction": "skip"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	finished := decodeMajority(t, w)
	assert.Equal(t, game.StatusFinished, finished.Game.Status)
	// the guest revealed nothing and pays 50 into a pot the host takes whole
	assert.Equal(t, 150, finished.Game.Players[0].Money)
	assert.Equal(t, 50, finished.Game.Players[1].Money)
	assert.Contains(t, ta.recorder.types(), models.ActionTypeRoundFinished)

	stored, err := ta.majority.Get(context.Background(), roomID)
	require.NoError(t, err)
	assert.Equal(t, finished.Game.Version, stored.Version)
}

func TestMajorityHostActions(t *testing.T) {
	ta := newTestAPI(false)
	roomID, hostID, guestID := setupMajorityRoom(t, ta)

	w := ta.post(t, GameColorMajority, map[string]any{"action": "create-slot", "roomId": roomID, "playerId": hostID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	slot := decodeMajority(t, w)
	require.NotEmpty(t, slot.NewPlayerID)
	require.Len(t, slot.Game.Players, 3)
	assert.Equal(t, "New Player", slot.Game.Players[2].Name)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "update-money", "roomId": roomID, "playerId": hostID, "targetPlayerId": guestID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "amount is required")

	w = ta.post(t, GameColorMajority, map[string]any{"action": "update-money", "roomId": roomID, "playerId": hostID, "targetPlayerId": guestID, "amount": -20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, -20, decodeMajority(t, w).Game.Players[1].Money)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "remove-player", "roomId": roomID, "playerId": hostID, "targetPlayerId": slot.NewPlayerID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeMajority(t, w).Game.Players, 2)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "rename", "roomId": roomID, "playerId": guestID, "playerName": "Bea"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bea", decodeMajority(t, w).Game.Players[1].Name)
}

func TestMajorityRequestErrors(t *testing.T) {
	ta := newTestAPI(false)
	roomID, hostID, _ := setupMajorityRoom(t, ta)

	w := ta.post(t, GameColorMajority, map[string]any{"action": "join", "roomId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Room not found", decodeMajority(t, w).Error)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "start", "roomId": roomID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing parameters", decodeMajority(t, w).Error)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "fly", "roomId": roomID, "playerId": hostID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", decodeMajority(t, w).Error)

	w = ta.post(t, "chess", map[string]any{"action": "create"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "start", "roomId": roomID, "playerId": hostID, "version": 1})
	assert.Equal(t, http.StatusConflict, w.Code, "room is at version 2")

	req := httptest.NewRequest(http.MethodPost, "/api/games/"+GameColorMajority, bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMajorityVersionedWrite(t *testing.T) {
	ta := newTestAPI(true)
	roomID, hostID, _ := setupMajorityRoom(t, ta)

	w := ta.post(t, GameColorMajority, map[string]any{"action": "start", "roomId": roomID, "playerId": hostID, "version": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(3), decodeMajority(t, w).Game.Version)
}

func TestLastPlayerLeavingDeletesRoom(t *testing.T) {
	ta := newTestAPI(false)
	roomID, hostID, guestID := setupMajorityRoom(t, ta)

	w := ta.post(t, GameColorMajority, map[string]any{"action": "leave", "roomId": roomID, "playerId": hostID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, guestID, decodeMajority(t, w).Game.HostID)

	w = ta.post(t, GameColorMajority, map[string]any{"action": "leave", "roomId": roomID, "playerId": guestID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, ta.get("/api/games/color-majority?roomId="+roomID).Code)
	assert.Equal(t, 0, ta.majority.Len())
}

func TestGetRoom(t *testing.T) {
	ta := newTestAPI(false)
	roomID, _, _ := setupMajorityRoom(t, ta)

	w := ta.get("/api/games/color-majority?roomId=" + roomID)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeMajority(t, w)
	assert.Equal(t, roomID, resp.Game.RoomID)

	assert.Equal(t, http.StatusBadRequest, ta.get("/api/games/color-majority").Code)
	assert.Equal(t, http.StatusNotFound, ta.get("/api/games/identity-map?roomId="+roomID).Code, "rooms are per game")
}

func TestQRCode(t *testing.T) {
	ta := newTestAPI(false)
	roomID, _, _ := setupMajorityRoom(t, ta)

	w := ta.get("/api/games/color-majority/qr?roomId=" + roomID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusNotFound, ta.get("/api/games/color-majority/qr?roomId=missing").Code)
}

func TestJoinURL(t *testing.T) {
	a := &APIServer{}
	r := httptest.NewRequest(http.MethodGet, "/api/games/identity-map/qr", nil)
	r.Host = "localhost:8080"
	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://localhost:8080/games/identity-map?roomId=abc1234", a.joinURL(r, GameIdentityMap, "abc1234"))

	a.publicURL = "https://party.example/"
	assert.Equal(t, "https://party.example/games/identity-map?roomId=abc1234", a.joinURL(r, GameIdentityMap, "abc1234"))
}

type identityResponse struct {
	Success  bool               `json:"success"`
	Game     identity.GameState `json:"game"`
	PlayerID string             `json:"playerId"`
	Error    string             `json:"error"`
}

func decodeIdentity(t *testing.T, w *httptest.ResponseRecorder) identityResponse {
	t.Helper()
	var resp identityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestIdentityMapOverHTTP(t *testing.T) {
	ta := newTestAPI(false)

	w := ta.post(t, GameIdentityMap, map[string]any{"action": "create", "playerId": "host", "playerName": "Hana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	roomID := decodeIdentity(t, w).Game.RoomID

	w = ta.post(t, GameIdentityMap, map[string]any{"action": "join", "roomId": roomID, "playerId": "p1", "playerName": "Bo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ta.post(t, GameIdentityMap, map[string]any{"action": "update_map", "roomId": roomID, "playerId": "p1", "subjectId": "host"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "map is required")

	w = ta.post(t, GameIdentityMap, map[string]any{
		"action":    "update_map",
		"roomId":    roomID,
		"playerId":  "p1",
		"subjectId": "host",
		"map":       map[string]any{"given": []string{"nurse"}, "chosen": []string{}, "core": []string{"kind"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeIdentity(t, w)
	assert.Equal(t, []string{"nurse"}, updated.Game.Players[1].Maps["host"].Given)

	w = ta.post(t, GameIdentityMap, map[string]any{"action": "set_presenter", "roomId": roomID, "presenterId": "p1", "subjectId": "host"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	presenting := decodeIdentity(t, w)
	require.NotNil(t, presenting.Game.PresenterID)
	assert.Equal(t, "p1", *presenting.Game.PresenterID)

	w = ta.post(t, GameIdentityMap, map[string]any{"action": "set_presenter", "roomId": roomID, "presenterId": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cleared := decodeIdentity(t, w)
	assert.Nil(t, cleared.Game.PresenterID)
	assert.Nil(t, cleared.Game.PresentingSubjectID)

	w = ta.post(t, GameIdentityMap, map[string]any{"action": "kick", "roomId": roomID, "playerId": "p1", "targetPlayerId": "host"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ta.post(t, GameIdentityMap, map[string]any{"action": "kick", "roomId": roomID, "playerId": "host", "targetPlayerId": "p1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeIdentity(t, w).Game.Players, 1)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(store.ErrVersionConflict))
	assert.Equal(t, http.StatusForbidden, statusFor(game.ErrUnauthorized))
	assert.Equal(t, http.StatusConflict, statusFor(game.ErrNotYourTurn))
	assert.Equal(t, http.StatusBadRequest, statusFor(game.ErrColorMismatch))
	assert.Equal(t, http.StatusBadRequest, statusFor(badRequest("x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestHealthz(t *testing.T) {
	ta := newTestAPI(false)
	w := ta.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
