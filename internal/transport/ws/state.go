package ws

// State is the observed lifecycle of a client connection. It only moves
// forward: Connecting -> Open -> Closed, or Connecting -> Closed.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
