package command

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/listener"
)

type ListenerConfig struct {
	Port uint16 `json:"port"`
	Path string `json:"path"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("listener.port must be set to a positive integer"))
	}
	if cl.Path != "" && !strings.HasPrefix(cl.Path, "/") {
		el.Add(fmt.Errorf("listener.path must start with /"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(sub listener.Subscriber, sink listener.IntentSink) *listener.WebsocketListener {
	var opts []listener.WebsocketListenerOpt
	if cl.Path != "" {
		opts = append(opts, listener.WithPath(cl.Path))
	}
	return listener.NewWebsocketListener(cl.Port, sub, sink, opts...)
}
