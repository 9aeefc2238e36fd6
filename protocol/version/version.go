// Package version implements the handshake protocol:
// exchange of version/verack messages that negotiates the protocol
// version and validates a peer's advertised services before any other
// protocol is allowed to attach.
//
// Grounded on original_source/src/protocols/protocol_version_31402.cpp and
// protocol_version_70002.cpp. The two are collapsed into one Go type
// gated by Config.Level (>= codes.LevelBIP61 enables the bip61 reject
// handling; the relay flag is taken from Config.Relay), per the design note's instruction to
// flatten inheritance into composition rather than modeling each bip
// level as its own subclass.
package version

import (
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol"
	"github.com/canitude/libaltcoin-network/synchronize"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
)

const rejectObsolete = "insufficient-version"
const rejectInsufficientServices = "insufficient-services"

// Config carries every field the handshake needs, mirroring the
// constructor parameters protocol_version_31402's p2p-sourced overload
// fills in from settings.
type Config struct {
	Level            uint32
	OwnVersion       uint32
	OwnServices      wire.ServiceFlag
	InvalidServices  wire.ServiceFlag
	MinimumVersion   uint32
	MinimumServices  wire.ServiceFlag
	Relay            bool
	UserAgent        string
	TopBlockHeight   func() int32
	Clock            clock.Clock

	// SelfConnect reports whether nonce belongs to one of this node's own
	// pending outbound attempts; a peer that echoes it back is this node
	// dialing itself.
	SelfConnect func(nonce uint64) bool
}

// Protocol runs the version/verack exchange on one channel and reports
// success or failure exactly once via the handler passed to New.
type Protocol struct {
	*protocol.EventState
	cfg   Config
	codec netmsg.Codec
	join  *synchronize.Join[codes.Code]
}

// New attaches a version Protocol to channel. handler is invoked exactly
// once: with codes.ErrSuccess on a completed, sufficient handshake, or a
// failure code otherwise.
func New(channel *peer.Channel, codec netmsg.Codec, cfg Config, handler func(codes.Code)) *Protocol {
	p := &Protocol{cfg: cfg, codec: codec}
	p.EventState = protocol.NewEventState("version", channel, handler)
	return p
}

// Start sends our own version message and subscribes to the peer's
// version and verack, joined 2-of-2 with an on-first-error policy
// matching protocol_version_31402::start's synchronize(..., on_error).
func (p *Protocol) Start() {
	if !p.validConfig() {
		p.SetEvent(codes.ErrChannelStopped)
		return
	}

	p.join = synchronize.New(2, synchronize.OnFirstError, codes.ErrSuccess, p.SetEvent)

	p.Channel().Subscribe(netmsg.CmdVersion, func(err error, msg netmsg.Message) bool {
		return p.handleReceiveVersion(err, msg)
	})
	p.Channel().Subscribe(netmsg.CmdVerAck, func(err error, msg netmsg.Message) bool {
		return p.handleReceiveVerAck(err)
	})

	if p.cfg.Level >= codes.LevelBIP61 {
		p.Channel().Subscribe(netmsg.CmdReject, func(err error, msg netmsg.Message) bool {
			return p.handleReceiveReject(err, msg)
		})
	}

	p.Channel().SendMessage(p.versionFactory())
}

// validConfig checks the handshake's protocol-version bounds once, at
// start, rather than on every received version message.
func (p *Protocol) validConfig() bool {
	if p.cfg.MinimumVersion < codes.MinSupportedVersion {
		return false
	}
	if p.cfg.OwnVersion > codes.MaxSupportedVersion {
		return false
	}
	if p.cfg.MinimumVersion > p.cfg.OwnVersion {
		return false
	}
	return true
}

func (p *Protocol) versionFactory() *wire.MsgVersion {
	now := time.Now()
	if p.cfg.Clock != nil {
		now = p.cfg.Clock.Now()
	}

	height := int32(0)
	if p.cfg.TopBlockHeight != nil {
		height = p.cfg.TopBlockHeight()
	}

	msg := wire.NewMsgVersion(&wire.NetAddress{}, &wire.NetAddress{}, p.Nonce(), height)
	msg.ProtocolVersion = int32(p.cfg.OwnVersion)
	msg.Services = p.cfg.OwnServices
	msg.Timestamp = now
	msg.UserAgent = p.cfg.UserAgent
	msg.DisableRelayTx = !p.cfg.Relay
	return msg
}

func (p *Protocol) handleReceiveVersion(err error, raw netmsg.Message) bool {
	if p.Stopped() {
		return false
	}
	if err != nil {
		p.SetEvent(codes.CodeOf(err))
		return false
	}

	msg, ok := raw.(*wire.MsgVersion)
	if !ok {
		p.SetEvent(codes.ErrBadStream)
		return false
	}

	if p.cfg.SelfConnect != nil && p.cfg.SelfConnect(msg.Nonce) {
		p.SetEvent(codes.ErrOperationFailed)
		return false
	}

	peerVersion := uint32(msg.ProtocolVersion)

	if !p.sufficientPeer(msg) {
		p.SetEvent(codes.ErrChannelStopped)
		return false
	}

	negotiated := peerVersion
	if p.cfg.OwnVersion < negotiated {
		negotiated = p.cfg.OwnVersion
	}
	p.Channel().SetNegotiatedVersion(negotiated)

	p.Channel().SendMessage(wire.NewMsgVerAck())
	p.join.Report(codes.ErrSuccess)
	return false
}

// sufficientPeer validates service bits, sending a bip61 reject first when
// running at 70002 and the peer falls short, matching
// protocol_version_70002::sufficient_peer's override-then-delegate shape.
func (p *Protocol) sufficientPeer(msg *wire.MsgVersion) bool {
	peerVersion := uint32(msg.ProtocolVersion)
	peerServices := msg.Services

	if p.cfg.Level >= codes.LevelBIP61 {
		if peerVersion < p.cfg.MinimumVersion {
			p.sendReject(rejectObsolete)
		} else if (peerServices & p.cfg.MinimumServices) != p.cfg.MinimumServices {
			p.sendReject(rejectInsufficientServices)
		}
	}

	if peerServices&p.cfg.InvalidServices != 0 {
		return false
	}
	if (peerServices & p.cfg.MinimumServices) != p.cfg.MinimumServices {
		return false
	}
	return peerVersion >= p.cfg.MinimumVersion
}

func (p *Protocol) sendReject(reason string) {
	msg := wire.NewMsgReject(netmsg.CmdVersion, wire.RejectObsolete, reason)
	p.Channel().SendMessage(msg)
}

func (p *Protocol) handleReceiveVerAck(err error) bool {
	if p.Stopped() {
		return false
	}
	if err != nil {
		p.SetEvent(codes.CodeOf(err))
		return false
	}
	p.join.Report(codes.ErrSuccess)
	return false
}

// handleReceiveReject intercepts version-rejection during the handshake
// only; anything else passes through for the reject protocol to handle,
// matching protocol_version_70002::handle_receive_reject.
func (p *Protocol) handleReceiveReject(err error, raw netmsg.Message) bool {
	if p.Stopped() {
		return false
	}
	if err != nil {
		p.SetEvent(codes.ErrChannelStopped)
		return false
	}

	msg, ok := raw.(*wire.MsgReject)
	if !ok || msg.Cmd != netmsg.CmdVersion {
		return true
	}

	if msg.Code == wire.RejectObsolete || msg.Code == wire.RejectDuplicate {
		p.SetEvent(codes.ErrChannelStopped)
		return false
	}
	return true
}
