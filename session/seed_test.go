package session

import (
	"context"
	"testing"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/stretchr/testify/require"
)

func TestSeedStartWithNoSeedsFailsImmediately(t *testing.T) {
	net := newFakeNetwork()
	s := NewSeed(net, nil)

	result := make(chan codes.Code, 1)
	s.Start(context.Background(), func(ec codes.Code) { result <- ec })

	require.Equal(t, codes.ErrNotFound, <-result)
}

func TestSeedStartOnStoppedNetworkReportsEveryAttemptStopped(t *testing.T) {
	net := newFakeNetwork()
	net.stopped = true
	s := NewSeed(net, []string{"seed.example:8333", "seed2.example:8333"})

	result := make(chan codes.Code, 1)
	s.Start(context.Background(), func(ec codes.Code) { result <- ec })

	require.Equal(t, codes.ErrPeerThrottling, <-result)
}
