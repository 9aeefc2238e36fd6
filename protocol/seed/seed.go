// Package seed implements the one-shot seed protocol: on
// a channel opened to a configured DNS/literal seed, request addresses
// and store whatever comes back, then complete. Its own completion
// handler doubles as the session-seed's outer handler, matching
// original_source/src/sessions/session_seed.cpp's
// attach<protocol_seed_31402>(channel)->start(handler) (no intermediate
// session-level callback).
package seed

import (
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol"
	"github.com/btcsuite/btcd/wire"
)

// Store is the host-store subset this protocol populates.
type Store interface {
	Store(addrs []*wire.NetAddress) error
}

// Protocol requests and stores addresses from a single seed peer, then
// reports completion exactly once.
type Protocol struct {
	*protocol.EventState
	store Store
}

// New attaches a seed Protocol to channel. handler fires once, with
// success once at least one address batch has been stored, or with the
// channel's stop code if the peer disconnects first.
func New(channel *peer.Channel, store Store, handler func(codes.Code)) *Protocol {
	p := &Protocol{store: store}
	p.EventState = protocol.NewEventState("seed", channel, handler)
	return p
}

// Start requests the peer's address table and waits for a reply.
func (p *Protocol) Start() {
	p.Channel().Subscribe(netmsg.CmdAddr, func(err error, msg netmsg.Message) bool {
		return p.handleReceiveAddress(err, msg)
	})
	p.Channel().SendMessage(&wire.MsgGetAddr{})
}

func (p *Protocol) handleReceiveAddress(err error, raw netmsg.Message) bool {
	if p.Stopped() {
		return false
	}
	if err != nil {
		p.SetEvent(codes.CodeOf(err))
		return false
	}

	msg, ok := raw.(*wire.MsgAddr)
	if !ok {
		return true
	}

	if len(msg.AddrList) == 0 {
		return true
	}

	if err := p.store.Store(msg.AddrList); err != nil {
		p.SetEvent(codes.CodeOf(err))
		return false
	}

	p.SetEvent(codes.ErrSuccess)
	return false
}
