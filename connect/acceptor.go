package connect

import (
	"net"
	"sync/atomic"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
)

// Acceptor listens on one local address and hands off each accepted
// connection as a peer.Proxy, grounded on backend-engineer1-land/server.go's
// listener() accept loop.
type Acceptor struct {
	listener net.Listener
	codec    netmsg.Codec
	stopped  int32
}

// Listen binds addr ("host:port" or ":port") and returns a live Acceptor.
func Listen(addr string, codec netmsg.Codec) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, codes.New(codes.ErrOperationFailed, err.Error())
	}
	return &Acceptor{listener: ln, codec: codec}, nil
}

// Accept blocks for the next inbound connection, returning a live
// peer.Proxy. It returns channel_stopped once Stop has been called.
func (a *Acceptor) Accept() (*peer.Proxy, error) {
	conn, err := a.listener.Accept()
	if err != nil {
		if atomic.LoadInt32(&a.stopped) != 0 {
			return nil, codes.New(codes.ErrChannelStopped, "")
		}
		return nil, codes.New(codes.ErrOperationFailed, err.Error())
	}
	return peer.NewProxy(conn, a.codec, outboundQueueDepth), nil
}

// Stop closes the listening socket, unblocking any in-flight Accept call.
// Stop is idempotent.
func (a *Acceptor) Stop() {
	if !atomic.CompareAndSwapInt32(&a.stopped, 0, 1) {
		return
	}
	a.listener.Close()
}

// Addr returns the bound local address.
func (a *Acceptor) Addr() net.Addr { return a.listener.Addr() }
