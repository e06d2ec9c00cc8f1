// Package ws wraps a gorilla websocket connection in a write-safe session.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame write before the session is
	// considered dead.
	writeWait = 5 * time.Second
)

// Upgrader is shared by the HTTP layer. Origin checking is deferred to a
// reverse proxy in front of the server.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Session serializes writes to one client connection. Reads stay on the
// owning handler goroutine; writes may come from the broadcast fan-out.
type Session struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// NewSession wraps an upgraded connection.
func NewSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

// Send marshals v and writes it as a single text frame under the write
// deadline.
func (s *Session) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SendRaw(data)
}

// SendRaw writes pre-marshaled bytes as a single text frame.
func (s *Session) SendRaw(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadMessage blocks for the next client frame.
func (s *Session) ReadMessage() ([]byte, error) {
	_, payload, err := s.conn.ReadMessage()
	return payload, err
}

// Close sends a close frame with the given reason and tears the connection
// down. Safe to call more than once.
func (s *Session) Close(code int, reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	message := websocket.FormatCloseMessage(code, reason)
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, message)
	s.mu.Unlock()
	_ = s.conn.Close()
}
