// Package subscribe implements the typed publish/subscribe primitive used
// by channels to fan received messages out to attached protocols, and by
// the p2p facade to fan channel-stop notifications out to sessions.
//
// Grounded on original_source/include/altcoin/network/message_subscriber.hpp
// semantics (one ordered subscriber list per message type) and adapted to
// a mutex-guarded slice of handlers, similar to peer.go's own small
// callback lists.
package subscribe

import "sync"

// Handler is notified of either a terminal error or a value of T, never
// both usefully at once: when err is non-nil, value is the zero value.
// Returning true keeps the handler subscribed for the next notification;
// returning false (or an error having already been delivered) removes it.
type Handler[T any] func(err error, value T) bool

// Subscriber delivers values of a single message type to every interested
// handler, in subscription order, one at a time. Different Subscriber
// instances (i.e. different message types) are independent and may be
// notified concurrently by their owning Channel; within one Subscriber,
// delivery is always sequential so a misbehaving handler cannot race its
// own state.
type Subscriber[T any] struct {
	mu       sync.Mutex
	handlers []Handler[T]
	stopped  bool
	err      error
}

// NewSubscriber returns an empty, live subscriber.
func NewSubscriber[T any]() *Subscriber[T] {
	return &Subscriber[T]{}
}

// Subscribe registers handler to receive future notifications. If the
// subscriber has already been stopped, handler is invoked immediately with
// the stop error and is not retained.
func (s *Subscriber[T]) Subscribe(handler Handler[T]) {
	s.mu.Lock()
	if s.stopped {
		err := s.err
		s.mu.Unlock()
		var zero T
		handler(err, zero)
		return
	}
	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()
}

// Relay delivers value to every currently subscribed handler in order,
// dropping any handler that returns false or requests removal.
func (s *Subscriber[T]) Relay(value T) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	handlers := s.handlers
	s.handlers = nil
	s.mu.Unlock()

	kept := handlers[:0]
	for _, h := range handlers {
		if h(nil, value) {
			kept = append(kept, h)
		}
	}

	s.mu.Lock()
	if !s.stopped {
		s.handlers = append(kept, s.handlers...)
	}
	s.mu.Unlock()
}

// Stop terminates the subscriber, delivering err to every currently
// subscribed handler exactly once and refusing all further subscriptions
// and relays. Stop is idempotent; only the first call's error is
// delivered.
func (s *Subscriber[T]) Stop(err error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.err = err
	handlers := s.handlers
	s.handlers = nil
	s.mu.Unlock()

	var zero T
	for _, h := range handlers {
		h(err, zero)
	}
}

// Stopped reports whether Stop has already run.
func (s *Subscriber[T]) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
