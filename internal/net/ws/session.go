// Package ws bridges websocket connections to game rooms: it upgrades
// join requests, feeds decoded commands into the room and detaches the
// session when the connection dies.
package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Session wraps one websocket connection behind the room's session
// contract. The mutex serializes writers; gorilla connections allow
// only one writer at a time.
type Session struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{id: uuid.NewString(), conn: conn}
}

// ID identifies the connection, not the player behind it.
func (s *Session) ID() string { return s.id }

// Send writes one text frame under the write deadline.
func (s *Session) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close drops the connection, which also unblocks the read loop.
func (s *Session) Close() {
	s.conn.Close()
}
