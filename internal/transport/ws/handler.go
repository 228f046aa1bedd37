package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wsconsole/internal/model"
	"wsconsole/internal/repo"
)

// Handler handles a single server-side WebSocket connection.
type Handler struct {
	Conn       *websocket.Conn
	SessionID  string
	RemoteAddr string
	Commands   repo.CommandLog
	Echo       bool
	Log        zerolog.Logger
	SendMu     sync.Mutex
}

// NewHandler creates a new WebSocket handler.
func NewHandler(
	conn *websocket.Conn,
	sessionID, remoteAddr string,
	commands repo.CommandLog,
	echo bool,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		Conn:       conn,
		SessionID:  sessionID,
		RemoteAddr: remoteAddr,
		Commands:   commands,
		Echo:       echo,
		Log:        log,
	}
}

// Send writes one text frame to the peer.
func (h *Handler) Send(text string) error {
	h.SendMu.Lock()
	defer h.SendMu.Unlock()
	if err := h.Conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return h.Conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Loop reads frames until the peer goes away.
func (h *Handler) Loop(ctx context.Context) {
	defer h.Conn.Close()

	for {
		_, msg, err := h.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Log.Warn().Err(err).Msg("read error")
			}
			h.Log.Info().Msg("connection closed")
			return
		}

		h.handleMessage(ctx, string(msg))
	}
}

func (h *Handler) handleMessage(ctx context.Context, text string) {
	h.Log.Info().Str("text", text).Msg("message received")

	if h.Commands != nil {
		cmd := &model.Command{
			SessionID:  h.SessionID,
			RemoteAddr: h.RemoteAddr,
			Text:       text,
			ReceivedAt: time.Now(),
		}
		if _, err := h.Commands.SaveCommand(ctx, cmd); err != nil {
			h.Log.Error().Err(err).Msg("failed to record command")
		}
	}

	if h.Echo {
		if err := h.Send(text); err != nil {
			h.Log.Warn().Err(err).Msg("failed to echo command")
		}
	}
}
