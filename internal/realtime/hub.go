// internal/realtime/hub.go
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// subscriberBuffer is how many undelivered snapshots a subscriber may queue
// before further updates to it are dropped.
const subscriberBuffer = 8

// Event is the envelope every websocket frame carries.
type Event struct {
	Type   string `json:"type"`
	Game   string `json:"game"`
	RoomID string `json:"roomId"`
	State  any    `json:"game_state,omitempty"`
}

type subscriber struct {
	ch chan []byte
}

// Hub fans room snapshots out to websocket subscribers, keyed by game and room.
type Hub struct {
	logger *logrus.Logger

	mu    sync.Mutex
	rooms map[string]map[*subscriber]struct{}
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[*subscriber]struct{}),
	}
}

func roomKey(game, roomID string) string {
	return game + "/" + roomID
}

// Subscribe registers a subscriber for one room. The returned cancel func
// must be called once the subscriber stops reading. The channel is closed
// when the room is closed.
func (h *Hub) Subscribe(game, roomID string) (<-chan []byte, func()) {
	sub := &subscriber{ch: make(chan []byte, subscriberBuffer)}
	key := roomKey(game, roomID)

	h.mu.Lock()
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*subscriber]struct{})
	}
	h.rooms[key][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.rooms[key], sub)
			if len(h.rooms[key]) == 0 {
				delete(h.rooms, key)
			}
		})
	}
}

// Subscribers reports how many subscribers a room has.
func (h *Hub) Subscribers(game, roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomKey(game, roomID)])
}

// Publish encodes state once and offers it to every subscriber of the room.
// A subscriber whose buffer is full misses this update.
func (h *Hub) Publish(game, roomID string, state any) {
	data := encodeEvent(h.logger, Event{Type: "state", Game: game, RoomID: roomID, State: state})
	h.send(roomKey(game, roomID), data)
}

// Close tells the room's subscribers that the room is gone, then drops them
// and closes their channels.
func (h *Hub) Close(game, roomID string) {
	key := roomKey(game, roomID)
	data := encodeEvent(h.logger, Event{Type: "closed", Game: game, RoomID: roomID})
	h.send(key, data)

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.rooms[key] {
		close(sub.ch)
	}
	delete(h.rooms, key)
}

func (h *Hub) send(key string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.rooms[key] {
		select {
		case sub.ch <- data:
		default:
			h.logger.WithField("room", key).Debug("subscriber too slow, dropping update")
		}
	}
}

// encodeEvent marshals an Event into JSON bytes.
// Logs a warning and returns empty JSON "{}" on marshalling error.
func encodeEvent(logger *logrus.Logger, ev Event) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Warnf("failed to marshal %s event for %s/%s: %v", ev.Type, ev.Game, ev.RoomID, err)
		return []byte("{}")
	}
	return data
}
