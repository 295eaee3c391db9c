package stream

import (
	"sync"

	"github.com/gorilla/websocket"
)

// wsFrame is the JSON envelope carried over a websocket subscription; it
// mirrors the SSE event/data framing.
type wsFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// WSSink delivers events over a websocket connection.
type WSSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSSink wraps an upgraded websocket connection.
func NewWSSink(conn *websocket.Conn) *WSSink {
	return &WSSink{conn: conn}
}

// Send writes one event frame. gorilla connections permit a single
// concurrent writer, hence the mutex.
func (s *WSSink) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(wsFrame{Event: event, Data: payload})
}

// Close closes the underlying connection.
func (s *WSSink) Close() error {
	return s.conn.Close()
}
