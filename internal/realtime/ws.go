// internal/realtime/ws.go
package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/partygames/internal/middleware"
)

const writeTimeout = 5 * time.Second

// ServeWS upgrades the request, sends snapshot, then streams every snapshot
// published for the room until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, game, roomID string, snapshot any) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warnf("WebSocket accept error for %s/%s: %v", game, roomID, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

	middleware.LogWebSocketConnect(h.logger, r.RemoteAddr, r.URL.Path)

	updates, cancel := h.Subscribe(game, roomID)
	defer cancel()

	// clients never send anything; CloseRead handles control frames and
	// cancels ctx when the peer goes away
	ctx := c.CloseRead(r.Context())

	wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
	err = wsjson.Write(wctx, c, Event{Type: "state", Game: game, RoomID: roomID, State: snapshot})
	wcancel()
	if err != nil {
		middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, nil)
			c.Close(websocket.StatusNormalClosure, "")
			return
		case data, ok := <-updates:
			if !ok {
				middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, nil)
				c.Close(StatusRoomClosed, "room closed")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, err)
				return
			}
		}
	}
}
