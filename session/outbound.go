package session

import (
	"context"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
)

// Outbound maintains OutboundConnections independent connect cycles: each
// cycle races a batch of dial attempts, registers whichever one
// succeeds, and immediately starts a replacement cycle the moment that
// channel eventually stops (for any reason, including a normal peer
// disconnect), so the target connection count is always being pursued.
//
// Grounded on original_source/src/sessions/session_outbound.cpp: start()
// launches batch_size_-connections_ cycles, each a
// new_connection()->start_connect() loop; handle_channel_stop relaunches
// a replacement cycle rather than retrying the same one in place.
type Outbound struct {
	Batch
	retryDelay time.Duration
}

// NewOutbound returns an Outbound session.
func NewOutbound(network Network, retryDelay time.Duration) *Outbound {
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &Outbound{Batch: NewBatch(network, true), retryDelay: retryDelay}
}

// Start launches the configured number of independent connect cycles. It
// returns immediately; cycles run until ctx is cancelled or the network
// stops.
func (o *Outbound) Start(ctx context.Context) {
	settings := o.Network.Settings()
	count := int(settings.OutboundConnections)
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		go o.cycle(ctx)
	}
}

func (o *Outbound) cycle(ctx context.Context) {
	for {
		if ctx.Err() != nil || o.Network.Stopped() {
			return
		}

		settings := o.Network.Settings()
		batchSize := int(settings.ConnectBatchSize)

		done := make(chan struct{})
		wasLive := false
		o.ConnectBatch(ctx, batchSize, func(proxy *peer.Proxy, ec codes.Code) {
			defer close(done)
			if ec != codes.ErrSuccess {
				return
			}
			wasLive = o.adopt(ctx, proxy)
		})

		select {
		case <-done:
		case <-ctx.Done():
			return
		}

		// A channel that actually went live is replaced immediately; the
		// cycle delay only applies when this round never produced a live
		// channel at all (batch exhausted, handshake failed), matching
		// session_outbound.cpp's distinction between a fresh connect
		// attempt's retry pacing and a lost connection's instant replace.
		if wasLive {
			continue
		}

		select {
		case <-time.After(o.retryDelay):
		case <-ctx.Done():
			return
		}
	}
}

// adopt wraps a freshly dialed proxy as a Channel, pends its nonce for
// self-connect detection before the handshake can complete, and on
// success attaches the steady-state protocol set. It blocks until the
// resulting channel stops (for any reason) and reports whether the
// handshake ever completed, so the caller knows whether to treat this
// round as a live connection lost rather than a failed dial attempt.
func (o *Outbound) adopt(ctx context.Context, proxy *peer.Proxy) bool {
	settings := o.Network.Settings()
	nonce := peer.NewNonce()
	channel := peer.NewChannel(proxy, nonce, settings.ProtocolMaximum, peer.ChannelConfig{
		Inactivity: settings.ChannelInactivity,
		Expiration: settings.ChannelExpiration,
		Clock:      o.Network.Clock(),
	})

	o.Network.PendNonce(nonce)

	live := false
	stopped := make(chan struct{})
	o.RegisterChannel(channel, func(ec codes.Code) {
		o.Network.UnpendNonce(nonce)
		if ec != codes.ErrSuccess {
			close(stopped)
			return
		}
		live = true
		attachSteadyState(channel, o.Network, settings)
	}, func(codes.Code) {
		close(stopped)
	})

	<-stopped
	return live
}
