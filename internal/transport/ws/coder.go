package ws

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"
)

// coderDialer implements Dialer with github.com/coder/websocket.
type coderDialer struct{}

func NewCoderDialer() Dialer {
	return coderDialer{}
}

func (coderDialer) DialContext(ctx context.Context, urlString string) (Socket, error) {
	conn, resp, err := websocket.Dial(ctx, urlString, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", urlString, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", urlString, err)
	}
	// No read limit beyond the library default; commands are short.
	return &coderSocket{conn: conn}, nil
}

type coderSocket struct {
	conn *websocket.Conn
}

func (s *coderSocket) ReadText(ctx context.Context) (string, error) {
	_, msg, err := s.conn.Read(ctx)
	if err != nil {
		var ce websocket.CloseError
		if errors.As(err, &ce) {
			return "", &CloseError{Code: int(ce.Code), Reason: ce.Reason}
		}
		return "", err
	}
	return string(msg), nil
}

func (s *coderSocket) WriteText(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, []byte(text))
}

func (s *coderSocket) Close(code int, reason string) error {
	return s.conn.Close(websocket.StatusCode(code), reason)
}
