package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wsconsole/config"
	"wsconsole/internal/repo"
)

// Server accepts command connections at /ws. Commands are logged, recorded
// in the command log when one is configured, and optionally echoed back.
type Server struct {
	Log      zerolog.Logger
	Commands repo.CommandLog
	Reply    string
	Upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server. commands may be nil.
func NewServer(log zerolog.Logger, commands repo.CommandLog, reply string) *Server {
	return &Server{
		Log:      log,
		Commands: commands,
		Reply:    reply,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP handles the WebSocket handshake and connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	session := uuid.NewString()
	log := s.Log.With().Str("session", session).Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("new connection")

	handler := NewHandler(conn, session, r.RemoteAddr, s.Commands, s.Reply == config.ReplyEcho, log)
	handler.Loop(r.Context())
}
