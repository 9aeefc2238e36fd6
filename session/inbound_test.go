package session

import (
	stdnet "net"
	"testing"

	"github.com/canitude/libaltcoin-network/peer"
	"github.com/stretchr/testify/require"
)

func TestInboundHandleAcceptRejectsOverCap(t *testing.T) {
	net := newFakeNetwork()
	net.settings.InboundConnections = 1
	net.inboundCnt = 1

	in := &Inbound{Base: NewBase(net, true)}

	a, b := pipeConn()
	defer b.Close()
	proxy := peer.NewProxy(a, net.Codec(), 1)

	in.handleAccept(proxy)

	require.True(t, proxy.Stopped())
}

func pipeConn() (stdnet.Conn, stdnet.Conn) {
	return stdnet.Pipe()
}
