package session

import (
	"context"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/protocol/seed"
	"github.com/canitude/libaltcoin-network/synchronize"
)

// Seed resolves the configured seed endpoints, connects to each one in
// parallel, and asks every peer for its address table. A seed round is
// judged successful once the host pool has grown by at least
// Settings.MinimumHostIncrease addresses.
//
// Grounded on original_source/src/sessions/session_seed.cpp: start()
// fans out one connect-and-fetch per configured seed, joined with
// on_count (every seed is allowed to fail independently); handle_complete
// then checks whether addresses were actually added, not whether every
// individual seed succeeded.
type Seed struct {
	Base
	seeds []string
}

// NewSeed returns a Seed session over the configured seed endpoints.
func NewSeed(network Network, seeds []string) *Seed {
	return &Seed{Base: NewBase(network, false), seeds: seeds}
}

// Start dials every configured seed concurrently and reports once every
// attempt has finished, with success iff the host pool gained at least
// Settings.MinimumHostIncrease addresses (one address when that is zero),
// and peer_throttling otherwise.
func (s *Seed) Start(ctx context.Context, handler func(codes.Code)) {
	if len(s.seeds) == 0 {
		handler(codes.ErrNotFound)
		return
	}

	before := s.Network.AddressCount()
	threshold := s.Network.Settings().MinimumHostIncrease
	if threshold == 0 {
		threshold = 1
	}

	join := synchronize.New(len(s.seeds), synchronize.OnCount, codes.ErrSuccess, func(codes.Code) {
		if uint32(s.Network.AddressCount()-before) >= threshold {
			handler(codes.ErrSuccess)
			return
		}
		handler(codes.ErrPeerThrottling)
	})

	for _, endpoint := range s.seeds {
		endpoint := endpoint
		go s.connectSeed(ctx, endpoint, func(ec codes.Code) { join.Report(ec) })
	}
}

func (s *Seed) connectSeed(ctx context.Context, endpoint string, report func(codes.Code)) {
	if s.Network.Stopped() {
		report(codes.ErrServiceStopped)
		return
	}
	if s.Network.Blacklisted(endpoint) {
		report(codes.ErrAddressBlocked)
		return
	}

	connector := s.Network.CreateConnector()
	s.Network.PendConnect(connector)
	defer s.Network.UnpendConnect(connector)

	proxy, err := connector.Connect(ctx, endpoint)
	if err != nil {
		report(codes.CodeOf(err))
		return
	}

	nonce := peer.NewNonce()
	settings := s.Network.Settings()
	channel := peer.NewChannel(proxy, nonce, settings.ProtocolMinimum, peer.ChannelConfig{
		Inactivity: settings.ChannelHandshake,
		Clock:      s.Network.Clock(),
	})

	s.RegisterChannel(channel, func(ec codes.Code) {
		if ec != codes.ErrSuccess {
			report(ec)
			return
		}
		p := seed.New(channel, seedAddressStore{s.Network}, func(ec codes.Code) {
			channel.Stop(ec)
			report(ec)
		})
		p.Start()
	}, func(codes.Code) {})
}

// seedAddressStore adapts Network to protocol/seed.Store.
type seedAddressStore struct{ network Network }

func (s seedAddressStore) Store(addrs []*wire.NetAddress) error {
	return s.network.StoreAddresses(addrs)
}
