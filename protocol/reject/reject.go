// Package reject implements the bip61 reject-logging protocol: logs
// post-handshake reject messages the peer sends, passing version
// rejects through untouched since the version protocol already consumes
// those during the handshake.
//
// Grounded on original_source/src/protocols/protocol_reject_70002.cpp.
package reject

import (
	"encoding/hex"

	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Protocol logs reject messages for the remainder of a channel's life.
type Protocol struct {
	protocol.Base
}

// New attaches a reject Protocol to channel. Only meaningful at bip61+
// (session code only attaches this once negotiated_version >= LevelBIP61).
func New(channel *peer.Channel) *Protocol {
	return &Protocol{Base: protocol.NewBase("reject", channel)}
}

// Start subscribes to reject and always resubscribes, matching the
// original's perpetual subscription.
func (p *Protocol) Start() {
	p.Channel().Subscribe(netmsg.CmdReject, func(err error, msg netmsg.Message) bool {
		return p.handleReceiveReject(err, msg)
	})
}

func (p *Protocol) handleReceiveReject(err error, raw netmsg.Message) bool {
	if err != nil {
		return false
	}

	msg, ok := raw.(*wire.MsgReject)
	if !ok {
		return true
	}

	// The version protocol consumes rejects about its own handshake.
	if msg.Cmd == netmsg.CmdVersion {
		return true
	}

	suffix := ""
	if msg.Hash != (chainhash.Hash{}) {
		suffix = " " + hex.EncodeToString(msg.Hash[:])
	}
	log.Debugf("[%s] rejected %s (%s) %s%s", p.Authority(), msg.Cmd, msg.Code, msg.Reason, suffix)
	return true
}
