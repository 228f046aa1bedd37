package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wsconsole/internal/eventloop"
	"wsconsole/internal/model"
	"wsconsole/internal/observable"
)

// Conn is a client WebSocket connection whose lifecycle and traffic are
// published as typed events on an event loop. It is created in the
// Connecting state and never reconnects. No event follows the close event.
type Conn struct {
	url    string
	dialer Dialer
	log    zerolog.Logger
	loop   *eventloop.Loop

	// closed is set by the task that delivers the close event. It is only
	// touched on the loop.
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State
	sock  Socket

	writeMu     sync.Mutex
	connectOnce sync.Once

	OnOpen    *observable.Notifier[model.OpenEvent]
	OnMessage *observable.Notifier[model.MessageEvent]
	OnError   *observable.Notifier[model.ErrorEvent]
	OnClose   *observable.Notifier[model.CloseEvent]
}

type Option func(*Conn)

func WithDialer(d Dialer) Option {
	return func(c *Conn) { c.dialer = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Conn) { c.log = log }
}

// New creates a connection to url in the Connecting state. Subscribe to
// its notifiers, then call Connect.
func New(loop *eventloop.Loop, url string, opts ...Option) *Conn {
	c := &Conn{
		url:       url,
		log:       zerolog.Nop(),
		loop:      loop,
		state:     StateConnecting,
		OnOpen:    observable.NewNotifier[model.OpenEvent](loop),
		OnMessage: observable.NewNotifier[model.MessageEvent](loop),
		OnError:   observable.NewNotifier[model.ErrorEvent](loop),
		OnClose:   observable.NewNotifier[model.CloseEvent](loop),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = NewGorillaDialer(0)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Connect starts dialing in the background and returns immediately. Only
// the first call has an effect. Cancelling ctx closes the connection.
func (c *Conn) Connect(ctx context.Context) {
	c.connectOnce.Do(func() {
		go c.run()
		go func() {
			select {
			case <-ctx.Done():
				_ = c.Close()
			case <-c.ctx.Done():
			}
		}()
	})
}

func (c *Conn) URL() string {
	return c.url
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send transmits text as a single text frame. It fails with
// ErrInvalidState unless the connection is open.
func (c *Conn) Send(text string) error {
	c.mu.Lock()
	state, sock := c.state, c.sock
	c.mu.Unlock()

	if state != StateOpen {
		return fmt.Errorf("%w (state %s)", ErrInvalidState, state)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := sock.WriteText(c.ctx, text); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Close closes the connection with a normal closure. Closing an already
// closed connection is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	prev := c.state
	if prev == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	sock := c.sock
	c.mu.Unlock()

	var err error
	if sock != nil {
		err = sock.Close(CloseNormalClosure, "")
	}
	c.cancel()

	now := time.Now()
	if prev == StateConnecting {
		c.emitClose(ErrClosedBeforeOpen, model.CloseEvent{Code: CloseAbnormalClosure, At: now})
		return nil
	}
	c.emitClose(nil, model.CloseEvent{Code: CloseNormalClosure, WasClean: true, At: now})
	return err
}

// emit runs fn on the loop unless the close event has already been
// delivered there.
func (c *Conn) emit(fn func()) {
	c.loop.Post(func() {
		if c.closed {
			return
		}
		fn()
	})
}

// emitClose delivers the optional error event and the close event in one
// loop task. Nothing emitted afterwards reaches subscribers.
func (c *Conn) emitClose(err error, ev model.CloseEvent) {
	c.emit(func() {
		c.closed = true
		if err != nil {
			c.OnError.Dispatch(model.ErrorEvent{Err: err, At: ev.At})
		}
		c.OnClose.Dispatch(ev)
	})
}

func (c *Conn) run() {
	c.log.Debug().Str("url", c.url).Msg("dialing")
	sock, err := c.dialer.DialContext(c.ctx, c.url)

	c.mu.Lock()
	if c.state == StateClosed {
		// Close won the race with the dial and already reported the outcome.
		c.mu.Unlock()
		if sock != nil {
			_ = sock.Close(CloseNormalClosure, "")
		}
		return
	}
	if err != nil {
		c.state = StateClosed
		c.mu.Unlock()
		c.cancel()

		c.emitClose(err, model.CloseEvent{Code: CloseAbnormalClosure, At: time.Now()})
		return
	}
	c.state = StateOpen
	c.sock = sock
	c.mu.Unlock()

	open := model.OpenEvent{URL: c.url, At: time.Now()}
	c.emit(func() { c.OnOpen.Dispatch(open) })
	c.readLoop(sock)
}

func (c *Conn) readLoop(sock Socket) {
	for {
		text, err := sock.ReadText(c.ctx)
		if err != nil {
			c.finish(sock, err)
			return
		}
		msg := model.MessageEvent{Data: text, At: time.Now()}
		c.emit(func() { c.OnMessage.Dispatch(msg) })
	}
}

// finish handles the end of the read side when the peer or the network,
// not Close, ended the connection.
func (c *Conn) finish(sock Socket, err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.mu.Unlock()

	_ = sock.Close(CloseNormalClosure, "")
	c.cancel()

	now := time.Now()
	if ce, clean := isCleanClose(err); clean {
		c.log.Debug().Int("code", ce.Code).Msg("closed by peer")
		c.emitClose(nil, model.CloseEvent{Code: ce.Code, Reason: ce.Reason, WasClean: true, At: now})
		return
	}

	c.log.Debug().Err(err).Msg("connection lost")
	c.emitClose(err, model.CloseEvent{Code: CloseAbnormalClosure, At: now})
}
