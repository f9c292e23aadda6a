package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/messaging"
)

const DefaultPath = "/ws"

// IntentSink accepts decoded client intents.
type IntentSink interface {
	Push(commands.Intent) error
}

// WebsocketListener accepts websocket clients, turns their messages into
// intents and relays bus traffic for the zones they entered.
type WebsocketListener struct {
	port     uint16
	path     string
	sub      Subscriber
	intents  IntentSink
	sessions *SessionManager
	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewWebsocketListener(port uint16, sub Subscriber, intents IntentSink, opts ...WebsocketListenerOpt) *WebsocketListener {
	l := &WebsocketListener{
		port:     port,
		path:     DefaultPath,
		sub:      sub,
		intents:  intents,
		sessions: NewSessionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(l.path, l)

	svr := &http.Server{
		Addr:              fmt.Sprintf(":%d", l.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svr.Shutdown(shutdownCtx); err != nil {
				slog.WarnContext(ctx, "shutting down websocket listener", "error", err)
			}
			l.sessions.CloseAll(ctx)
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "websocket listener started", "port", l.port, "path", l.path)

	err := svr.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	<-stopped
	return nil
}

// Sessions exposes the live session registry.
func (l *WebsocketListener) Sessions() *SessionManager {
	return l.sessions
}

// ServeHTTP upgrades one client and runs its session until it disconnects.
func (l *WebsocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("user")
	if userId == "" {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "user", userId, "error", err)
		return
	}

	s := newSession(uuid.NewString(), userId, conn, l.sub)
	l.sessions.add(s)
	defer func() {
		l.sessions.remove(s)
		l.sessions.done()
	}()

	l.run(r.Context(), s)
}

func (l *WebsocketListener) run(ctx context.Context, s *session) {
	defer func() {
		s.close()
		s.UnsubscribeAll()
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.WarnContext(ctx, "closing websocket", "user", s.userId, "error", err)
		}
	}()

	if err := s.Subscribe(messaging.PlayerSubject(s.userId)); err != nil {
		slog.ErrorContext(ctx, "subscribing session", "user", s.userId, "error", err)
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	slog.InfoContext(ctx, "websocket session opened", "user", s.userId, "session", s.id)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			break
		}
		l.handle(ctx, s, payload)
	}

	// Another open session keeps the user's characters in the world.
	if l.sessions.remove(s) == 0 {
		disconnect := commands.Intent{Type: commands.KindDisconnect, UserId: s.userId, SessionId: s.id, ReceivedAt: l.now()}
		if err := l.intents.Push(disconnect); err != nil {
			slog.ErrorContext(ctx, "queueing disconnect", "user", s.userId, "error", err)
		}
	}
	s.close()
	<-writerDone
	slog.InfoContext(ctx, "websocket session closed", "user", s.userId, "session", s.id)
}

// handle decodes one client message and queues it for the next tick.
func (l *WebsocketListener) handle(ctx context.Context, s *session, payload []byte) {
	in, err := commands.Decode(payload, s.userId, s.id, l.now())
	if err != nil {
		var ue *commands.UserError
		if errors.As(err, &ue) {
			s.sendError(ue.Message)
			return
		}
		slog.WarnContext(ctx, "decoding intent", "user", s.userId, "error", err)
		return
	}

	switch in.Type {
	case commands.KindEnterZone:
		if err := s.Subscribe(messaging.ZoneSubject(in.Zone)); err != nil {
			slog.ErrorContext(ctx, "subscribing to zone", "user", s.userId, "zone", in.Zone, "error", err)
			s.sendError("unable to join zone")
			return
		}
	case commands.KindLeaveZone:
		if in.Zone != "" {
			s.Unsubscribe(messaging.ZoneSubject(in.Zone))
		} else {
			s.UnsubscribeAll()
			if err := s.Subscribe(messaging.PlayerSubject(s.userId)); err != nil {
				slog.ErrorContext(ctx, "resubscribing session", "user", s.userId, "error", err)
			}
		}
	}

	if err := l.intents.Push(in); err != nil {
		if errors.Is(err, commands.ErrQueueFull) {
			s.sendError("server busy, try again")
			return
		}
		slog.ErrorContext(ctx, "queueing intent", "user", s.userId, "type", in.Type, "error", err)
	}
}
