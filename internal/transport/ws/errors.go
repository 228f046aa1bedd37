package ws

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned by Send when the connection is not open.
	ErrInvalidState = errors.New("ws: connection is not open")
	// ErrClosedBeforeOpen is reported when Close interrupts a dial.
	ErrClosedBeforeOpen = errors.New("ws: connection closed before it was established")
	ErrUnsupportedScheme = errors.New("ws: unsupported origin scheme")
)

// Close codes used by the client (RFC 6455 section 7.4.1).
const (
	CloseNormalClosure   = 1000
	CloseGoingAway       = 1001
	CloseAbnormalClosure = 1006
)

// CloseError is how dialers report a close frame received from the peer.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("ws: closed by peer (code %d): %s", e.Code, e.Reason)
}

// isCleanClose reports whether err is a close handshake that the RFC treats
// as a normal end of the connection.
func isCleanClose(err error) (*CloseError, bool) {
	var ce *CloseError
	if !errors.As(err, &ce) {
		return nil, false
	}
	return ce, ce.Code != CloseAbnormalClosure
}
