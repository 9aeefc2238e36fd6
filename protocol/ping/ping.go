// Package ping implements the heartbeat protocol: a
// perpetual timer that sends outbound pings, plus (at bip31+) a
// nonce-matched pong expectation used to detect latency-exceeded peers.
//
// Grounded on original_source/src/protocols/protocol_ping_31402.cpp (no
// pending/nonce tracking, fire once at start to kick off the first
// heartbeat synchronously) and protocol_ping_60001.cpp (adds a pending_
// flag: a heartbeat while already pending stops the channel with
// channel_timeout, matching "latency exceeded").
package ping

import (
	"sync"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol"
	"github.com/btcsuite/btcd/wire"
)

// Config selects the ping variant and its heartbeat period.
type Config struct {
	Level     uint32
	Heartbeat time.Duration
}

// Protocol runs the ping heartbeat on one channel. Unlike version/seed, it
// has no single completion: it runs for the channel's lifetime, so New
// does not take a completion handler.
type Protocol struct {
	*protocol.TimerState
	cfg Config

	pendingMu sync.Mutex
	pending   bool
	nonce     uint64
}

// New attaches a ping Protocol to channel.
func New(channel *peer.Channel, cfg Config) *Protocol {
	p := &Protocol{cfg: cfg}
	event := protocol.NewEventState("ping", channel, func(codes.Code) {})
	p.TimerState = protocol.NewTimerState(event, cfg.Heartbeat, true, p.sendHeartbeat)
	return p
}

// Start subscribes to inbound ping and starts the heartbeat timer; at
// bip31+ each heartbeat subscribes to pong itself (see sendHeartbeat).
// The 31402 variant fires an immediate heartbeat at
// start, matching protocol_ping_31402::start's synchronous set_event.
func (p *Protocol) Start() {
	p.Channel().Subscribe(netmsg.CmdPing, func(err error, msg netmsg.Message) bool {
		return p.handleReceivePing(err, msg)
	})

	p.TimerState.Start()
	if p.cfg.Level < codes.LevelBIP31 {
		p.sendHeartbeat()
	}
}

// sendHeartbeat re-subscribes to CmdPong on every tick, matching
// protocol_ping_60001.cpp's send_ping re-issuing SUBSCRIBE3(pong, ...)
// each time: handleReceivePong always consumes its subscription (returns
// false), so without a fresh subscribe here only the very first pong
// would ever be delivered.
func (p *Protocol) sendHeartbeat() {
	if p.cfg.Level >= codes.LevelBIP31 {
		p.pendingMu.Lock()
		if p.pending {
			p.pendingMu.Unlock()
			p.Stop(codes.ErrChannelTimeout)
			return
		}
		p.nonce = peer.NewNonce()
		nonce := p.nonce
		p.pending = true
		p.pendingMu.Unlock()

		p.Channel().Subscribe(netmsg.CmdPong, func(err error, msg netmsg.Message) bool {
			return p.handleReceivePong(err, msg)
		})

		msg := wire.NewMsgPing(nonce)
		p.Channel().SendMessage(msg)
		return
	}

	p.Channel().SendMessage(&wire.MsgPing{})
}

func (p *Protocol) handleReceivePing(err error, raw netmsg.Message) bool {
	if p.Stopped() {
		return false
	}
	if err != nil {
		return false
	}

	msg, ok := raw.(*wire.MsgPing)
	if !ok {
		return true
	}

	if p.cfg.Level >= codes.LevelBIP31 {
		p.Channel().SendMessage(wire.NewMsgPong(msg.Nonce))
	}
	return true
}

func (p *Protocol) handleReceivePong(err error, raw netmsg.Message) bool {
	if p.Stopped() {
		return false
	}
	if err != nil {
		return false
	}

	msg, ok := raw.(*wire.MsgPong)
	if !ok {
		return true
	}

	p.pendingMu.Lock()
	expected := p.nonce
	p.pending = false
	p.pendingMu.Unlock()

	if msg.Nonce != expected {
		p.Stop(codes.ErrBadStream)
		return false
	}
	return false
}
