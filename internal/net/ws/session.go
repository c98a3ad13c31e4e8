package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tank-arena/server/internal/net/proto"
)

const writeWait = 10 * time.Second

// Conn is the subset of *websocket.Conn the hub writes through.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(deadline time.Time) error
	Close() error
}

type subscriber struct {
	id     string
	format proto.Format
	conn   Conn
	mu     sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	messageType := websocket.TextMessage
	if s.format.Binary() {
		messageType = websocket.BinaryMessage
	}
	return s.writeMessage(messageType, data)
}

func (s *subscriber) writeMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}
