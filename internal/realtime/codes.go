// internal/realtime/codes.go
package realtime

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the room subscription endpoint.
// These provide more specific reasons for closure than standard codes.
const (
	// StatusRoomClosed is sent when the room was deleted while subscribed.
	StatusRoomClosed websocket.StatusCode = 3003
)
