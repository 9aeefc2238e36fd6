// Package session implements the session layer: the base channel-
// registration pipeline every session type shares, and the four
// concrete session types (seed, manual, inbound, outbound) that decide
// when and how new channels are created.
//
// Sessions never touch a socket directly; they go through connect.Connector/
// connect.Acceptor for transport and the Network interface below for
// everything that belongs to the owning p2p instance (dedup, pending-nonce
// tracking, blacklist checks, host store access). This mirrors
// original_source/src/sessions/session.cpp's session holding a
// p2p<MessageSubscriber>& reference, expressed as an injected interface
// instead of a concrete facade type to avoid an import cycle between this
// package and the root p2p facade that constructs sessions.
package session

import (
	"time"

	"github.com/canitude/libaltcoin-network/connect"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
)

// Network is everything a session needs from the owning p2p instance.
type Network interface {
	// Stopped reports whether the whole p2p instance is shutting down.
	Stopped() bool

	// Settings returns the shared configuration.
	Settings() Settings

	// Codec returns the wire codec channels should be constructed with.
	Codec() netmsg.Codec

	// Clock returns the injected clock for timestamps and jitter.
	Clock() clock.Clock

	// CreateConnector returns a fresh Connector for one dial attempt.
	CreateConnector() *connect.Connector

	// StoreChannel adopts channel into the live set, keyed by authority.
	// It fails with address_in_use if the authority is already present.
	StoreChannel(ch *peer.Channel) error

	// RemoveChannel evicts channel from the live set.
	RemoveChannel(ch *peer.Channel)

	// PendConnect/UnpendConnect track in-flight connectors so Stop can
	// cancel them.
	PendConnect(c *connect.Connector)
	UnpendConnect(c *connect.Connector)

	// PendNonce/UnpendNonce/NonceExists back self-connect detection.
	PendNonce(nonce uint64)
	UnpendNonce(nonce uint64)
	NonceExists(nonce uint64) bool

	// Blacklisted reports whether authority must never be dialed.
	Blacklisted(authority string) bool

	// AddressCount reports the host store's current size.
	AddressCount() int

	// StoreAddresses persists addresses learned from a peer.
	StoreAddresses(addrs []*wire.NetAddress) error

	// SampleAddresses returns up to max candidate addresses to dial or to
	// answer a get_address request with.
	SampleAddresses(max int) []*wire.NetAddress

	// Self returns this node's own externally reachable address, or nil
	// if none is configured.
	Self() *wire.NetAddress

	// TopBlockHeight returns the height advertised in version messages.
	TopBlockHeight() int32

	// InboundCount reports how many inbound channels are currently live,
	// for the inbound session's connection_limit_ enforcement.
	InboundCount() int
}

// Settings is the subset of the shared Config a session consults.
type Settings struct {
	ProtocolMaximum     uint32
	ProtocolMinimum     uint32
	Services            uint64
	InvalidServices     uint64
	RelayTransactions   bool
	UserAgent           string
	InboundConnections  uint32
	OutboundConnections uint32
	ConnectBatchSize    uint32
	ConnectTimeout      time.Duration
	ChannelHandshake    time.Duration
	ChannelHeartbeat    time.Duration
	ChannelInactivity   time.Duration
	ChannelExpiration   time.Duration
	HostPoolCapacity    uint32
	MinimumHostIncrease uint32
	Seeds               []string
}

