package observable

import (
	"sync"

	"wsconsole/internal/eventloop"
)

// Handler receives one kind of event.
type Handler[E any] func(E)

type subscription[E any] struct {
	handler Handler[E]
}

// Notifier delivers events of type E to its subscribers on a Loop.
// Handlers run in registration order and never concurrently with any other
// task on the same Loop.
type Notifier[E any] struct {
	loop *eventloop.Loop

	mu   sync.Mutex
	subs []*subscription[E]
}

func NewNotifier[E any](loop *eventloop.Loop) *Notifier[E] {
	return &Notifier[E]{loop: loop}
}

// Subscribe registers h and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (n *Notifier[E]) Subscribe(h Handler[E]) (unsubscribe func()) {
	sub := &subscription[E]{handler: h}

	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(sub) })
	}
}

func (n *Notifier[E]) remove(toRemove *subscription[E]) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, sub := range n.subs {
		if sub == toRemove {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of current subscribers.
func (n *Notifier[E]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Notify schedules delivery of e on the loop. It reports false if the loop
// has stopped.
func (n *Notifier[E]) Notify(e E) bool {
	return n.loop.Post(func() { n.Dispatch(e) })
}

// Dispatch delivers e synchronously. Callers must already be running on the
// notifier's loop.
func (n *Notifier[E]) Dispatch(e E) {
	n.mu.Lock()
	subs := make([]*subscription[E], len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, sub := range subs {
		sub.handler(e)
	}
}
