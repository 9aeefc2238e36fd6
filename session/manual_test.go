package session

import (
	"context"
	"testing"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/stretchr/testify/require"
)

func TestManualConnectOnStoppedNetworkFailsImmediately(t *testing.T) {
	net := newFakeNetwork()
	net.stopped = true
	m := NewManual(net, 0)

	result := make(chan codes.Code, 1)
	m.Connect(context.Background(), "127.0.0.1:9999", func(ec codes.Code) { result <- ec })

	require.Equal(t, codes.ErrServiceStopped, <-result)
}

func TestManualConnectUnreachableAddressFails(t *testing.T) {
	net := newFakeNetwork()
	m := NewManual(net, 0)

	result := make(chan codes.Code, 1)
	m.Connect(context.Background(), "127.0.0.1:1", func(ec codes.Code) { result <- ec })

	ec := <-result
	require.NotEqual(t, codes.ErrSuccess, ec)
}
