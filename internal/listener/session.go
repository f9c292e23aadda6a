package listener

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	outboxSize = 256
	writeWait  = 10 * time.Second
)

// Subscriber provides the ability to subscribe to message subjects
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// errorMessage is written to a client whose intent was refused before it
// reached the simulation.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// session is one websocket client. Everything bound for the client goes
// through outbox and is written by a single goroutine.
type session struct {
	id     string
	userId string
	conn   *websocket.Conn

	subscriber Subscriber
	outbox     chan []byte

	mu   sync.Mutex
	subs map[string]func()

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id, userId string, conn *websocket.Conn, sub Subscriber) *session {
	return &session{
		id:         id,
		userId:     userId,
		conn:       conn,
		subscriber: sub,
		outbox:     make(chan []byte, outboxSize),
		subs:       map[string]func(){},
		done:       make(chan struct{}),
	}
}

// Subscribe forwards a subject to the client.
func (s *session) Subscribe(subject string) error {
	if s.subscriber == nil {
		return fmt.Errorf("subscriber is nil")
	}

	unsub, err := s.subscriber.Subscribe(subject, s.send)
	if err != nil {
		return fmt.Errorf("subscribing to channel '%s': %w", subject, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// If we some how are subscribing to a channel we already think we have
	// unsubscribe from the existing one.
	if old, ok := s.subs[subject]; ok {
		old()
	}
	s.subs[subject] = unsub
	return nil
}

// Unsubscribe removes a subscription by name
func (s *session) Unsubscribe(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if unsub, ok := s.subs[subject]; ok {
		unsub()
		delete(s.subs, subject)
	}
}

// UnsubscribeAll removes all subscriptions
func (s *session) UnsubscribeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, unsub := range s.subs {
		unsub()
		delete(s.subs, name)
	}
}

// send queues data for the writer. A client that cannot keep up loses
// messages rather than stalling the bus.
func (s *session) send(data []byte) {
	select {
	case <-s.done:
	case s.outbox <- data:
	default:
		slog.Warn("dropping message for slow client", "user", s.userId, "session", s.id)
	}
}

func (s *session) sendError(msg string) {
	data, err := json.Marshal(errorMessage{Type: "error", Message: msg})
	if err != nil {
		slog.Error("marshaling error message", "error", err)
		return
	}
	s.send(data)
}

// writeLoop drains the outbox until the session closes.
func (s *session) writeLoop() {
	for {
		select {
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case data := <-s.outbox:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("writing to websocket", "user", s.userId, "session", s.id, "error", err)
				s.close()
				return
			}
		}
	}
}

// close stops the writer and unblocks the reader.
func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.SetReadDeadline(time.Now())
	})
}
