// Package connect implements outbound dialing (Connector) and inbound
// listening (Acceptor), the two ways a raw socket enters this core before
// being wrapped as a peer.Channel.
//
// Grounded on original_source/src/connector.cpp's connect() sequence
// (resolve, then race a timer against the dial, stopped/stop idempotence)
// and on backend-engineer1-land/server.go's listener()/handleConnectPeer
// goroutine-per-attempt pattern, with the optional Tor SOCKS5 path lifted
// from lnd's own server.go dial path for onion peers.
package connect

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"golang.org/x/net/proxy"
)

// Dialer abstracts the raw network dial so Connector can be pointed at a
// direct net.Dialer or a Tor SOCKS5 proxy dialer interchangeably.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Connector performs a single outbound dial at a time; callers create one
// Connector per attempt (as session_batch.cpp does) so it can be pended
// and cancelled independently of any other in-flight attempt.
type Connector struct {
	dialer  Dialer
	codec   netmsg.Codec
	timeout time.Duration

	stopped int32
	cancel  context.CancelFunc
}

// NewConnector returns a Connector that dials through dialer using codec
// for the resulting Proxy, aborting any attempt that exceeds timeout.
func NewConnector(dialer Dialer, codec netmsg.Codec, timeout time.Duration) *Connector {
	return &Connector{dialer: dialer, codec: codec, timeout: timeout}
}

// NewDirectDialer returns a Dialer that connects directly over TCP.
func NewDirectDialer() Dialer {
	return &net.Dialer{}
}

// torDialer adapts a golang.org/x/net/proxy.Dialer (which predates
// context.Context) to this package's context-aware Dialer interface.
type torDialer struct {
	inner proxy.Dialer
}

func (t *torDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := t.inner.Dial(network, address)
		ch <- result{conn, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}

// NewTorDialer returns a Dialer that routes through a local Tor SOCKS5
// proxy, as lnd's server.go does for onion-address peers.
func NewTorDialer(proxyAddr string) (Dialer, error) {
	d, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}
	return &torDialer{inner: d}, nil
}

// Connect dials address ("host:port"), returning a live outbound
// peer.Proxy on success. It fails with channel_stopped if Stop ran before
// the call, channel_timeout if the timeout (or ctx) ends the dial or Stop
// is called mid-dial, and resolve_failed for any other dial error.
//
// Mirrors connector.cpp: the timer and the dial race each other, and
// whichever finishes first determines the outcome; a Stop call always
// surfaces channel_timeout regardless of the dial's own error, matching
// handle_timer's unconditional channel_timeout delivery.
func (c *Connector) Connect(ctx context.Context, address string) (*peer.Proxy, error) {
	if atomic.LoadInt32(&c.stopped) != 0 {
		return nil, codes.New(codes.ErrChannelStopped, "")
	}

	dialCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	dialCtx, cancel := context.WithCancel(dialCtx)
	c.cancel = cancel
	defer cancel()

	conn, err := c.dialer.DialContext(dialCtx, "tcp", address)
	if atomic.LoadInt32(&c.stopped) != 0 {
		if conn != nil {
			conn.Close()
		}
		return nil, codes.New(codes.ErrChannelTimeout, "connector stopped")
	}
	if err != nil {
		if dialCtx.Err() != nil {
			return nil, codes.New(codes.ErrChannelTimeout, err.Error())
		}
		return nil, codes.New(codes.ErrResolveFailed, err.Error())
	}

	return peer.NewProxy(conn, c.codec, outboundQueueDepth), nil
}

// Stop cancels any in-flight dial; subsequent Connect calls fail
// immediately. Stop is idempotent.
func (c *Connector) Stop() {
	if !atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
}

// Stopped reports whether Stop has run.
func (c *Connector) Stopped() bool { return atomic.LoadInt32(&c.stopped) != 0 }

const outboundQueueDepth = 50
