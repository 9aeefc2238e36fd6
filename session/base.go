package session

import (
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol/version"
	"github.com/btcsuite/btcd/wire"
)

func wireServiceFlag(v uint64) wire.ServiceFlag { return wire.ServiceFlag(v) }

// Base is embedded by every concrete session type. It does not by itself
// decide when to create channels; it only implements the shared
// register-channel pipeline every session funnels new channels through.
//
// Grounded on original_source/src/sessions/session.cpp: start_channel sets
// the notify flag and primes handshake protocols; handle_starting attaches
// the version handshake (70002 if the channel was pre-negotiated to
// bip61+, else 31402); handshake_complete stores the channel into the
// network's live set only on success; handle_start subscribes the
// channel's own stop to remove it from that set before invoking the
// caller's stop handler.
type Base struct {
	Network Network
	Notify  bool
}

// NewBase returns a Base bound to network. notify is recorded in the Notify
// field (the seed session passes false; manual, inbound and outbound pass
// true); RegisterChannel does not consult it.
func NewBase(network Network, notify bool) Base {
	return Base{Network: network, Notify: notify}
}

// RegisterChannel runs a channel through the handshake, then (only on
// success) adopts it into the network's live set and arms stop-triggered
// removal. onStarted fires exactly once with the outcome of the whole
// pipeline; onStopped fires at most once, only for a channel that was
// successfully started, once the channel later stops for any reason.
func (b *Base) RegisterChannel(channel *peer.Channel, onStarted func(codes.Code), onStopped func(codes.Code)) {
	channel.StartTimers()

	// A handshake still incomplete after ChannelHandshake (when non-zero)
	// stops the channel with channel_timeout.
	var handshakeTimer *time.Timer
	if timeout := b.Network.Settings().ChannelHandshake; timeout > 0 {
		handshakeTimer = time.AfterFunc(timeout, func() { channel.Stop(codes.ErrChannelTimeout) })
	}

	// A single Start call launches the channel's read/write loops; any
	// later interest in its stop (the post-adopt removal below) attaches
	// via OnStop so nothing double-launches the proxy goroutines.
	channel.Start(func(error) {})

	b.attachHandshake(channel, func(ec codes.Code) {
		if handshakeTimer != nil {
			handshakeTimer.Stop()
		}
		if ec != codes.ErrSuccess {
			channel.Stop(ec)
			onStarted(ec)
			return
		}

		if err := b.Network.StoreChannel(channel); err != nil {
			ec := codes.CodeOf(err)
			channel.Stop(ec)
			onStarted(ec)
			return
		}

		onStarted(codes.ErrSuccess)

		channel.OnStop(func(stopErr error) {
			b.Network.RemoveChannel(channel)
			onStopped(codes.CodeOf(stopErr))
		})
	})
}

func (b *Base) attachHandshake(channel *peer.Channel, handshakeDone func(codes.Code)) {
	b.attachHandshakeLevel(channel, channel.NegotiatedVersion(), handshakeDone)
}

// attachHandshakeLevel runs the version handshake at a caller-chosen
// protocol level, used by the seed session to negotiate at
// ProtocolMinimum with no relay and no services advertised, matching
// original_source/src/sessions/session_seed.cpp's attach<protocol_version
// _31402> regardless of the node's own maximum.
func (b *Base) attachHandshakeLevel(channel *peer.Channel, level uint32, handshakeDone func(codes.Code)) {
	settings := b.Network.Settings()

	ownServices := settings.Services
	relay := settings.RelayTransactions
	if level < codes.LevelBIP31 {
		ownServices = 0
		relay = false
	}

	cfg := version.Config{
		Level:           level,
		OwnVersion:      settings.ProtocolMaximum,
		MinimumVersion:  settings.ProtocolMinimum,
		InvalidServices: wireServiceFlag(settings.InvalidServices),
		OwnServices:     wireServiceFlag(ownServices),
		MinimumServices: 0,
		Relay:           relay,
		UserAgent:       settings.UserAgent,
		TopBlockHeight:  func() int32 { return b.Network.TopBlockHeight() },
		Clock:           b.Network.Clock(),
		SelfConnect:     b.Network.NonceExists,
	}

	v := version.New(channel, b.Network.Codec(), cfg, handshakeDone)
	v.Start()
}
