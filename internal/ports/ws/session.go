package ws

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 1 << 16
	outboxSize     = 64
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSlowConsumer  = errors.New("session outbox full")
)

// Session is one websocket connection. Frames are queued and written by a single
// writer goroutine so the room never blocks on a slow client.
type Session struct {
	conn        *websocket.Conn
	messageType int
	out         chan []byte

	mu     deadlock.Mutex
	closed bool
}

func newSession(conn *websocket.Conn, messageType int) *Session {
	s := &Session{
		conn:        conn,
		messageType: messageType,
		out:         make(chan []byte, outboxSize),
	}
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.writePump()
	return s
}

// Send queues a frame. A full outbox closes the session.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.out <- data:
		return nil
	default:
		s.closeLocked()
		return ErrSlowConsumer
	}
}

// Close stops the writer, which closes the connection once queued frames are flushed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *Session) closeLocked() {
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(s.messageType, data); err != nil {
				_ = s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.Close()
				return
			}
		}
	}
}

func deadline() time.Time {
	return time.Now().Add(writeWait)
}
