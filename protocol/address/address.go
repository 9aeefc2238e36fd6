// Package address implements the address-relay protocol:
// self-announcement, storing addresses learned from peers into the host
// store, and answering get_address requests.
//
// Grounded on original_source/src/protocols/protocol_address_31402.cpp:
// configured_self() builds a one-entry list only if a self address is
// configured; start() sends it, then (unless the host pool is disabled)
// subscribes address/get_address and proactively requests addresses from
// the peer.
package address

import (
	"time"

	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol"
	"github.com/btcsuite/btcd/wire"
)

// Store is the subset of the host store this protocol
// needs: persist newly learned addresses, and hand back a sample for
// get_address replies.
type Store interface {
	Store(addrs []*wire.NetAddress) error
	Sample(max int) []*wire.NetAddress
}

// Config carries the self-announcement address and pool sizing.
type Config struct {
	Self             *wire.NetAddress
	OwnServices      wire.ServiceFlag
	HostPoolCapacity uint32
	Now              func() time.Time
}

// Protocol runs address relay on one channel for its lifetime.
type Protocol struct {
	protocol.Base
	cfg   Config
	store Store
}

// New attaches an address Protocol to channel.
func New(channel *peer.Channel, store Store, cfg Config) *Protocol {
	return &Protocol{Base: protocol.NewBase("address", channel), cfg: cfg, store: store}
}

// Start sends the self address (if configured) and, unless the host pool
// is disabled, subscribes address/get_address and requests the peer's
// addresses.
func (p *Protocol) Start() {
	if self := p.configuredSelf(); self != nil {
		p.Channel().SendMessage(&wire.MsgAddr{AddrList: []*wire.NetAddress{self}})
	}

	if p.cfg.HostPoolCapacity == 0 {
		return
	}

	p.Channel().Subscribe(netmsg.CmdAddr, func(err error, msg netmsg.Message) bool {
		return p.handleReceiveAddress(err, msg)
	})
	p.Channel().Subscribe(netmsg.CmdGetAddr, func(err error, msg netmsg.Message) bool {
		return p.handleReceiveGetAddress(err, msg)
	})

	p.Channel().SendMessage(&wire.MsgGetAddr{})
}

func (p *Protocol) configuredSelf() *wire.NetAddress {
	if p.cfg.Self == nil {
		return nil
	}
	self := *p.cfg.Self
	self.Services = p.cfg.OwnServices
	now := time.Now()
	if p.cfg.Now != nil {
		now = p.cfg.Now()
	}
	self.Timestamp = now
	return &self
}

func (p *Protocol) handleReceiveAddress(err error, raw netmsg.Message) bool {
	if err != nil {
		return false
	}
	msg, ok := raw.(*wire.MsgAddr)
	if !ok {
		return true
	}
	if err := p.store.Store(msg.AddrList); err != nil {
		log.Debugf("[%s] failed to store addresses: %v", p.Authority(), err)
	}
	return true
}

func (p *Protocol) handleReceiveGetAddress(err error, raw netmsg.Message) bool {
	if err != nil {
		return false
	}
	if _, ok := raw.(*wire.MsgGetAddr); !ok {
		return true
	}

	if self := p.configuredSelf(); self != nil {
		p.Channel().SendMessage(&wire.MsgAddr{AddrList: []*wire.NetAddress{self}})
		return true
	}

	sample := p.store.Sample(1000)
	if len(sample) > 0 {
		p.Channel().SendMessage(&wire.MsgAddr{AddrList: sample})
	}
	return true
}
