package listener

import "time"

type WebsocketListenerOpt func(*WebsocketListener)

// WithPath sets the http path clients connect on.
func WithPath(path string) WebsocketListenerOpt {
	return func(l *WebsocketListener) {
		l.path = path
	}
}

func WithClock(now func() time.Time) WebsocketListenerOpt {
	return func(l *WebsocketListener) {
		l.now = now
	}
}
