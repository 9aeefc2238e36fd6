package session

import (
	"context"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/connect"
	"github.com/canitude/libaltcoin-network/peer"
)

// Inbound accepts connections on one already-bound listener, enforcing
// the configured inbound connection cap before registering each one.
//
// Grounded on original_source/src/sessions/session_inbound.cpp: accept()
// loops on the acceptor's accept() call; handle_accept rejects once
// connection_limit_ inbound channels are already live, otherwise runs
// the same start_channel/handshake pipeline as every other session.
type Inbound struct {
	Base
	acceptor *connect.Acceptor
}

// NewInbound returns an Inbound session over an already-listening
// acceptor.
func NewInbound(network Network, acceptor *connect.Acceptor) *Inbound {
	return &Inbound{Base: NewBase(network, true), acceptor: acceptor}
}

// Start runs the accept loop until ctx is cancelled or the network
// stops. It returns once the acceptor's listener is closed.
func (in *Inbound) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil || in.Network.Stopped() {
			in.acceptor.Stop()
			return
		}

		proxy, err := in.acceptor.Accept()
		if err != nil {
			if codes.CodeOf(err) == codes.ErrChannelStopped {
				return
			}
			continue
		}

		go in.handleAccept(proxy)
	}
}

func (in *Inbound) handleAccept(proxy *peer.Proxy) {
	settings := in.Network.Settings()
	if settings.InboundConnections > 0 && uint32(in.Network.InboundCount()) >= settings.InboundConnections {
		proxy.Stop(codes.ErrOversubscribed)
		return
	}

	nonce := peer.NewNonce()
	channel := peer.NewChannel(proxy, nonce, settings.ProtocolMaximum, peer.ChannelConfig{
		Inactivity: settings.ChannelInactivity,
		Expiration: settings.ChannelExpiration,
		Clock:      in.Network.Clock(),
		Inbound:    true,
	})

	in.RegisterChannel(channel, func(ec codes.Code) {
		if ec != codes.ErrSuccess {
			return
		}
		attachSteadyState(channel, in.Network, settings)
	}, func(codes.Code) {})
}
