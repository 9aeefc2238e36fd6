package session

import (
	"context"
	"testing"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/stretchr/testify/require"
)

func TestConnectBatchWithEmptyHostPoolFails(t *testing.T) {
	net := newFakeNetwork()
	b := NewBatch(net, true)

	result := make(chan codes.Code, 1)
	b.ConnectBatch(context.Background(), 3, func(proxy *peer.Proxy, ec codes.Code) {
		result <- ec
	})

	require.Equal(t, codes.ErrNotFound, <-result)
}

func TestConnectBatchOnStoppedNetworkFails(t *testing.T) {
	net := newFakeNetwork()
	net.stopped = true
	b := NewBatch(net, true)

	result := make(chan codes.Code, 1)
	b.ConnectBatch(context.Background(), 2, func(proxy *peer.Proxy, ec codes.Code) {
		result <- ec
	})

	require.Equal(t, codes.ErrServiceStopped, <-result)
}
