package peer

import (
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/queue"
)

// Proxy owns one live socket: a read goroutine that decodes incoming
// messages and relays them to a MessageSubscriber, and a write goroutine
// that drains an outbound queue onto the socket one message at a time so
// writes are always serialized per connection.
//
// Grounded on backend-engineer1-land/peer.go's readHandler/writeHandler/
// queueHandler trio, with the hand-rolled container/list queue replaced by
// lnd's own lnd/queue.ConcurrentQueue.
type Proxy struct {
	conn  net.Conn
	codec netmsg.Codec

	authority string

	outbound *queue.ConcurrentQueue
	messages *MessageSubscriber
	stop     *stopSubscriber

	onActivity func()

	stopped int32
	wg      sync.WaitGroup
}

// stopSubscriber is the minimal one-shot notify list used for proxy/channel
// stop events; it does not need the full generic Subscriber machinery
// because it only ever fires once, with no per-type dispatch.
type stopSubscriber struct {
	mu       sync.Mutex
	handlers []func(error)
	fired    bool
	err      error
}

func (s *stopSubscriber) subscribe(h func(error)) {
	s.mu.Lock()
	if s.fired {
		err := s.err
		s.mu.Unlock()
		h(err)
		return
	}
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
}

// NewProxy wraps conn as a live Proxy. outboundDepth sizes the outbound
// queue's internal buffering.
func NewProxy(conn net.Conn, codec netmsg.Codec, outboundDepth int) *Proxy {
	p := &Proxy{
		conn:      conn,
		codec:     codec,
		authority: conn.RemoteAddr().String(),
		outbound:  queue.NewConcurrentQueue(outboundDepth),
		messages:  NewMessageSubscriber(),
		stop:      &stopSubscriber{},
	}
	p.outbound.Start()
	return p
}

// Authority returns the "host:port" identifying the remote peer.
func (p *Proxy) Authority() string { return p.authority }

// OnActivity registers fn to be called whenever readLoop decodes an
// inbound frame successfully, letting a wrapping Channel reset its
// inactivity timer on live traffic rather than on a fixed deadline.
func (p *Proxy) OnActivity(fn func()) { p.onActivity = fn }

// Start launches the read and write goroutines. onStop is invoked exactly
// once, from whichever goroutine first observes a fatal error, with the
// Code describing why the proxy stopped. Start must be called exactly
// once per Proxy; additional stop observers can be added later with
// OnStop.
func (p *Proxy) Start(onStop func(error)) {
	p.stop.subscribe(onStop)
	p.wg.Add(2)
	go p.readLoop()
	go p.writeLoop()
}

// OnStop registers an additional observer for this proxy's eventual stop,
// without relaunching the read/write goroutines. If the proxy has already
// stopped, handler fires immediately.
func (p *Proxy) OnStop(handler func(error)) {
	p.stop.subscribe(handler)
}

// Subscribe registers handler for incoming messages of the given wire
// command.
func (p *Proxy) Subscribe(command string, handler func(err error, msg netmsg.Message) bool) {
	p.messages.Subscribe(command, handler)
}

// Send enqueues msg for delivery, returning immediately; delivery order is
// preserved but completion is asynchronous. Send on a stopped proxy is a
// no-op.
func (p *Proxy) Send(msg netmsg.Message) {
	if atomic.LoadInt32(&p.stopped) != 0 {
		return
	}
	p.outbound.ChanIn() <- msg
}

// Stopped reports whether Stop has already run.
func (p *Proxy) Stopped() bool {
	return atomic.LoadInt32(&p.stopped) != 0
}

// Stop tears the proxy down: closes the socket (unblocking the read loop),
// drains and stops the outbound queue, and terminates every message
// subscriber with ec. Stop is idempotent.
func (p *Proxy) Stop(ec codes.Code) {
	if !atomic.CompareAndSwapInt32(&p.stopped, 0, 1) {
		return
	}
	p.conn.Close()
	p.outbound.Stop()
	err := codes.New(ec, "")
	p.messages.Stop(err)
	p.fireStop(err)
}

func (p *Proxy) fireStop(err error) {
	p.stop.mu.Lock()
	if p.stop.fired {
		p.stop.mu.Unlock()
		return
	}
	p.stop.fired = true
	p.stop.err = err
	handlers := p.stop.handlers
	p.stop.handlers = nil
	p.stop.mu.Unlock()

	for _, h := range handlers {
		h(err)
	}
}

func (p *Proxy) readLoop() {
	defer p.wg.Done()
	for {
		msg, err := p.codec.ReadMessage(p.conn)
		if err != nil {
			if err == io.EOF {
				p.Stop(codes.ErrChannelStopped)
			} else {
				p.Stop(codes.ErrBadStream)
			}
			return
		}
		log.Tracef("received %s from [%s]:\n%s", p.codec.Command(msg), p.authority, spew.Sdump(msg))
		if p.onActivity != nil {
			p.onActivity()
		}
		p.messages.Relay(msg, p.codec)
	}
}

func (p *Proxy) writeLoop() {
	defer p.wg.Done()
	for {
		item, ok := <-p.outbound.ChanOut()
		if !ok {
			return
		}
		msg := item.(netmsg.Message)
		if err := p.codec.WriteMessage(p.conn, msg); err != nil {
			p.Stop(codes.ErrChannelStopped)
			return
		}
		log.Tracef("sent %s to [%s]", p.codec.Command(msg), p.authority)
	}
}
