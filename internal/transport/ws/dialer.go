package ws

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wssPrefix         = "wss://"
	closeWriteTimeout = time.Second
	writeTimeout      = 10 * time.Second
)

// Socket is a dialed WebSocket carrying raw text frames.
type Socket interface {
	// ReadText blocks until the next data frame arrives. A close frame from
	// the peer is returned as *CloseError.
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
	Close(code int, reason string) error
}

// Dialer opens Sockets.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Socket, error)
}

// ResolveURL resolves a relative WebSocket path against a page origin the
// way a browser does: http becomes ws and https becomes wss.
func ResolveURL(origin, path string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return u.ResolveReference(ref).String(), nil
}

// gorillaDialer implements Dialer with github.com/gorilla/websocket.
type gorillaDialer struct {
	handshakeTimeout time.Duration
}

func NewGorillaDialer(handshakeTimeout time.Duration) Dialer {
	return &gorillaDialer{handshakeTimeout: handshakeTimeout}
}

func (d *gorillaDialer) DialContext(ctx context.Context, urlString string) (Socket, error) {
	dialer := *websocket.DefaultDialer
	if d.handshakeTimeout > 0 {
		dialer.HandshakeTimeout = d.handshakeTimeout
	}
	if strings.HasPrefix(urlString, wssPrefix) {
		dialer.TLSClientConfig = &tls.Config{}
	}

	conn, resp, err := dialer.DialContext(ctx, urlString, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", urlString, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", urlString, err)
	}
	return &gorillaSocket{conn: conn}, nil
}

type gorillaSocket struct {
	conn *websocket.Conn
}

// ReadText returns binary frames as text as well; payloads are opaque.
func (s *gorillaSocket) ReadText(_ context.Context) (string, error) {
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return "", &CloseError{Code: ce.Code, Reason: ce.Text}
		}
		return "", err
	}
	return string(msg), nil
}

func (s *gorillaSocket) WriteText(_ context.Context, text string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (s *gorillaSocket) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
	return s.conn.Close()
}
