package connect_test

import (
	"context"
	"net"
	"testing"
	"time"

	network "github.com/canitude/libaltcoin-network"
	"github.com/canitude/libaltcoin-network/connect"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestConnectorSucceedsAgainstListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, _ := ln.Accept()
		if conn != nil {
			conn.Close()
		}
	}()

	c := connect.NewConnector(connect.NewDirectDialer(), netmsg.NewWireCodec(70002, wire.MainNet), time.Second)
	proxy, err := c.Connect(context.Background(), ln.Addr().String())
	require.NoError(t, err)
	require.NotNil(t, proxy)
}

func TestConnectorFailsOnUnreachableAddress(t *testing.T) {
	c := connect.NewConnector(connect.NewDirectDialer(), netmsg.NewWireCodec(70002, wire.MainNet), 50*time.Millisecond)
	_, err := c.Connect(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
}

func TestConnectorStopPreventsFurtherConnect(t *testing.T) {
	c := connect.NewConnector(connect.NewDirectDialer(), netmsg.NewWireCodec(70002, wire.MainNet), time.Second)
	c.Stop()

	_, err := c.Connect(context.Background(), "127.0.0.1:9")
	require.Error(t, err)
	require.Equal(t, network.ErrChannelStopped, network.CodeOf(err))
}
