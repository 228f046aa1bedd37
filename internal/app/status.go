package app

import (
	"github.com/rs/zerolog"

	"wsconsole/internal/model"
	"wsconsole/internal/transport/ws"
)

// TextDisplay is anything whose text content can be replaced.
type TextDisplay interface {
	SetText(text string)
}

// StatusEcho mirrors received messages into a display and logs connection
// lifecycle events.
type StatusEcho struct {
	display TextDisplay
	log     zerolog.Logger
}

func NewStatusEcho(display TextDisplay, log zerolog.Logger) *StatusEcho {
	return &StatusEcho{display: display, log: log}
}

// Bind subscribes to every event kind of conn.
func (s *StatusEcho) Bind(conn *ws.Conn) (unbind func()) {
	unsubs := []func(){
		conn.OnMessage.Subscribe(s.OnMessage),
		conn.OnOpen.Subscribe(s.OnOpen),
		conn.OnError.Subscribe(s.OnError),
		conn.OnClose.Subscribe(s.OnClose),
	}
	return func() {
		for _, unsubscribe := range unsubs {
			unsubscribe()
		}
	}
}

func (s *StatusEcho) OnMessage(ev model.MessageEvent) {
	s.display.SetText(ev.Data)
}

func (s *StatusEcho) OnOpen(ev model.OpenEvent) {
	s.log.Info().
		Str("event", string(ev.Type())).
		Interface("detail", ev).
		Msg("connection event")
}

func (s *StatusEcho) OnError(ev model.ErrorEvent) {
	s.log.Error().
		Str("event", string(ev.Type())).
		Err(ev.Err).
		Interface("detail", ev).
		Msg("connection event")
}

// OnClose only logs; the connection is not re-established.
func (s *StatusEcho) OnClose(ev model.CloseEvent) {
	s.log.Info().
		Str("event", string(ev.Type())).
		Interface("detail", ev).
		Msg("connection event")
}
