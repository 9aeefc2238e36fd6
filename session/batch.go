package session

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/synchronize"
)

// Batch adds parallel dial fan-out on top of Base: batchSize independent
// connectors race each other, and the first to yield a connected channel
// wins the round.
//
// Grounded on original_source/src/sessions/session_batch.cpp's
// session_batch::connect/new_connect: each attempt independently fetches
// an address, checks the blacklist, creates and pends a connector, then
// dials; the round completes via an on_first_success join across
// batch_size_ attempts.
type Batch struct {
	Base
}

// NewBatch returns a Batch bound to network.
func NewBatch(network Network, notify bool) Batch {
	return Batch{Base: NewBase(network, notify)}
}

// ConnectBatch races batchSize independent dial attempts and reports the
// first channel to connect successfully, or the last failure code if
// every attempt failed. handler fires exactly once.
func (b *Batch) ConnectBatch(ctx context.Context, batchSize int, handler func(*peer.Proxy, codes.Code)) {
	if batchSize <= 0 {
		batchSize = 1
	}

	var mu sync.Mutex
	var winner *peer.Proxy
	join := synchronize.New(batchSize, synchronize.OnFirstSuccess, codes.ErrSuccess, func(last codes.Code) {
		mu.Lock()
		w := winner
		mu.Unlock()
		if w != nil {
			handler(w, codes.ErrSuccess)
			return
		}
		handler(nil, last)
	})

	for i := 0; i < batchSize; i++ {
		go func() {
			proxy, ec := b.newConnect(ctx)
			if ec == codes.ErrSuccess {
				mu.Lock()
				if winner == nil {
					winner = proxy
				} else {
					proxy.Stop(codes.ErrChannelStopped)
				}
				mu.Unlock()
			}
			join.Report(ec)
		}()
	}
}

func (b *Batch) newConnect(ctx context.Context) (*peer.Proxy, codes.Code) {
	if b.Network.Stopped() {
		return nil, codes.ErrServiceStopped
	}

	addrs := b.Network.SampleAddresses(1)
	if len(addrs) == 0 {
		return nil, codes.ErrNotFound
	}
	authority := addressAuthority(addrs[0])

	if b.Network.Blacklisted(authority) {
		return nil, codes.ErrAddressBlocked
	}

	connector := b.Network.CreateConnector()
	b.Network.PendConnect(connector)
	defer b.Network.UnpendConnect(connector)

	proxy, err := connector.Connect(ctx, authority)
	if err != nil {
		return nil, codes.CodeOf(err)
	}
	return proxy, codes.ErrSuccess
}

// addressAuthority formats a wire.NetAddress as the "host:port" string
// Connector.Connect expects, mirroring original_source's
// config::authority::to_string().
func addressAuthority(addr *wire.NetAddress) string {
	return net.JoinHostPort(addr.IP.String(), strconv.Itoa(int(addr.Port)))
}
