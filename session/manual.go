package session

import (
	"context"
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol/address"
	"github.com/canitude/libaltcoin-network/protocol/ping"
	"github.com/canitude/libaltcoin-network/protocol/reject"
)

// Manual keeps a fixed set of configured peers connected, retrying
// forever on disconnect, and additionally serves one-off Connect calls a
// caller can issue against arbitrary hostnames.
//
// Grounded on original_source/src/sessions/session_manual.cpp: start()
// launches a persistent retry loop per configured peer; connect() (the
// public, caller-facing entry point) runs exactly one attempt and
// reports through its own handler without entering the retry loop.
type Manual struct {
	Base
	retryDelay time.Duration
}

// NewManual returns a Manual session. retryDelay paces reconnect attempts
// after a configured peer's channel stops.
func NewManual(network Network, retryDelay time.Duration) *Manual {
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &Manual{Base: NewBase(network, true), retryDelay: retryDelay}
}

// Start launches a persistent connect-and-retry loop for every configured
// peer. It returns immediately; loops run until ctx is cancelled or the
// network stops.
func (m *Manual) Start(ctx context.Context, peers []string) {
	for _, p := range peers {
		go m.persist(ctx, p)
	}
}

func (m *Manual) persist(ctx context.Context, authority string) {
	for {
		if ctx.Err() != nil || m.Network.Stopped() {
			return
		}

		done := make(chan struct{})
		var once sync.Once
		m.Connect(ctx, authority, func(ec codes.Code) {
			// A successful connect reports again when its channel stops;
			// only that later report (or a failure) ends this attempt.
			if ec == codes.ErrSuccess {
				return
			}
			once.Do(func() { close(done) })
		})

		select {
		case <-done:
		case <-ctx.Done():
			return
		}

		select {
		case <-time.After(m.retryDelay):
		case <-ctx.Done():
			return
		}
	}
}

// Connect runs exactly one attempt against authority ("host:port"),
// reporting success once the channel has handshaked and steady-state
// protocols are attached, or a failure code otherwise. handler fires
// again, a final time, once the resulting channel eventually stops.
func (m *Manual) Connect(ctx context.Context, authority string, handler func(codes.Code)) {
	if m.Network.Stopped() {
		handler(codes.ErrServiceStopped)
		return
	}

	connector := m.Network.CreateConnector()
	m.Network.PendConnect(connector)

	proxy, err := connector.Connect(ctx, authority)
	m.Network.UnpendConnect(connector)
	if err != nil {
		handler(codes.CodeOf(err))
		return
	}

	nonce := peer.NewNonce()
	settings := m.Network.Settings()
	channel := peer.NewChannel(proxy, nonce, settings.ProtocolMaximum, peer.ChannelConfig{
		Inactivity: settings.ChannelInactivity,
		Expiration: settings.ChannelExpiration,
		Clock:      m.Network.Clock(),
	})

	m.Network.PendNonce(nonce)

	m.RegisterChannel(channel, func(ec codes.Code) {
		m.Network.UnpendNonce(nonce)
		if ec != codes.ErrSuccess {
			handler(ec)
			return
		}
		attachSteadyState(channel, m.Network, settings)
		handler(codes.ErrSuccess)
	}, handler)
}

// attachSteadyState wires the protocols a fully handshaked peer runs for
// the remainder of its life: heartbeat ping, address relay, and (at
// bip61+) reject logging.
//
// Grounded on original_source/src/sessions/session.cpp's
// attach_protocols: the set attached depends on the channel's negotiated
// version.
func attachSteadyState(channel *peer.Channel, network Network, settings Settings) {
	ping.New(channel, ping.Config{
		Level:     channel.NegotiatedVersion(),
		Heartbeat: settings.ChannelHeartbeat,
	}).Start()

	address.New(channel, addressStoreAdapter{network}, address.Config{
		Self:             network.Self(),
		OwnServices:      wireServiceFlag(settings.Services),
		HostPoolCapacity: settings.HostPoolCapacity,
	}).Start()

	if channel.NegotiatedVersion() >= codes.LevelBIP61 {
		reject.New(channel).Start()
	}
}

// addressStoreAdapter adapts Network to protocol/address.Store.
type addressStoreAdapter struct{ network Network }

func (a addressStoreAdapter) Store(addrs []*wire.NetAddress) error {
	return a.network.StoreAddresses(addrs)
}

func (a addressStoreAdapter) Sample(max int) []*wire.NetAddress {
	return a.network.SampleAddresses(max)
}
