// Package protocol defines the scaffolding every per-channel protocol
// state machine is built from: a thin identity/channel accessor (Base), an
// atomic single-shot completion handler (EventState), and an optional
// recurring timer on top of it (TimerState).
//
// The original C++ expresses this as a three-level inheritance chain
// (protocol -> protocol_events -> protocol_timer). The design note calls
// for flattening deep inheritance into composition, so here each layer is
// a struct concrete protocols embed by value by name by field, not by
// subclassing; Protocol is the interface session code programs against.
package protocol

import (
	"sync/atomic"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/lightningnetwork/lnd/ticker"
)

// Protocol is the interface every attached protocol state machine
// satisfies, used by session code to track and stop whatever is currently
// attached to a channel without knowing its concrete type.
type Protocol interface {
	Name() string
	Authority() string
	Channel() *peer.Channel
	Stop(ec codes.Code)
}

// Base supplies the identity accessors every concrete protocol embeds,
// grounded on protocol.cpp's constructor storing channel/pool/name.
type Base struct {
	name    string
	channel *peer.Channel
}

// NewBase returns a Base bound to channel, labeled name for logging.
func NewBase(name string, channel *peer.Channel) Base {
	return Base{name: name, channel: channel}
}

func (b *Base) Name() string            { return b.name }
func (b *Base) Authority() string       { return b.channel.Authority() }
func (b *Base) Channel() *peer.Channel  { return b.channel }
func (b *Base) Nonce() uint64           { return b.channel.Nonce() }
func (b *Base) NegotiatedVersion() uint32 {
	return b.channel.NegotiatedVersion()
}

// EventState adds a single completion handler that fires at most once,
// grounded on protocol_events.cpp's atomic handler_ with clear-before-
// invoke ordering for terminal codes. A zero-value EventState is not
// usable; construct with NewEventState.
type EventState struct {
	Base
	handler atomic.Pointer[func(codes.Code)]
}

// NewEventState returns an EventState bound to channel with handler as its
// one-shot completion callback.
func NewEventState(name string, channel *peer.Channel, handler func(codes.Code)) *EventState {
	e := &EventState{Base: NewBase(name, channel)}
	h := handler
	e.handler.Store(&h)
	return e
}

// Stopped reports whether the completion handler has already fired (and
// been cleared), mirroring protocol_events::stopped().
func (e *EventState) Stopped() bool {
	return e.handler.Load() == nil
}

// SetEvent delivers ec to the completion handler exactly once. For
// terminal codes (service_stopped, channel_stopped) the handler is cleared
// before being invoked, so a handler that itself calls back into this
// protocol never observes a live (and hence re-enterable) handler slot --
// the exact ordering protocol_events.cpp depends on.
func (e *EventState) SetEvent(ec codes.Code) {
	if codes.IsTerminal(ec) {
		h := e.handler.Swap(nil)
		if h != nil {
			(*h)(ec)
		}
		return
	}
	h := e.handler.Load()
	if h == nil {
		return
	}
	e.handler.Store(nil)
	(*h)(ec)
}

// Stop clears the handler (if still live) and stops the underlying
// channel with ec.
func (e *EventState) Stop(ec codes.Code) {
	e.handler.Store(nil)
	e.Channel().Stop(ec)
}

// TimerState layers a mockable recurring or one-shot timer on top of
// EventState, grounded on protocol_timer.cpp. When Perpetual is true the
// timer is rearmed after every fire (the ping heartbeat's use case);
// otherwise it fires once (the handshake/expiration use case).
type TimerState struct {
	*EventState
	ticker    ticker.Ticker
	perpetual bool
	onFire    func()
}

// NewTimerState wraps event with a timer of period interval. If perpetual
// is false the timer self-cancels after its first fire. onFire runs
// before the timer is (conditionally) rearmed, matching handle_timer's
// set_event-then-maybe-reset order.
func NewTimerState(event *EventState, interval time.Duration, perpetual bool, onFire func()) *TimerState {
	return &TimerState{
		EventState: event,
		ticker:     ticker.New(interval),
		perpetual:  perpetual,
		onFire:     onFire,
	}
}

// Start begins the timer loop in its own goroutine. TimerState does not
// subscribe to the channel's stop itself; HandleNotify called with
// channel_stopped cancels the timer outright, matching handle_notify.
func (t *TimerState) Start() {
	t.ticker.Resume()
	go t.loop()
}

func (t *TimerState) loop() {
	for range t.ticker.Ticks() {
		if t.Stopped() {
			return
		}
		t.onFire()
		if !t.perpetual {
			t.ticker.Stop()
			return
		}
	}
}

// HandleNotify cancels the timer outright once the channel reports
// channel_stopped, matching protocol_timer::handle_notify.
func (t *TimerState) HandleNotify(ec codes.Code) {
	if ec == codes.ErrChannelStopped {
		t.ticker.Stop()
	}
}

// Stop cancels the timer before delegating to EventState.Stop.
func (t *TimerState) Stop(ec codes.Code) {
	t.ticker.Stop()
	t.EventState.Stop(ec)
}
