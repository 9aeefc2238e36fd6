package pending_test

import (
	"testing"

	network "github.com/canitude/libaltcoin-network"
	"github.com/canitude/libaltcoin-network/pending"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsDuplicateKey(t *testing.T) {
	c := pending.New[string, int]()
	require.NoError(t, c.Store("1.2.3.4:8333", 1))

	err := c.Store("1.2.3.4:8333", 2)
	require.Error(t, err)
	require.Equal(t, network.ErrAddressInUse, network.CodeOf(err))
}

func TestPendUnpendRoundTrip(t *testing.T) {
	c := pending.New[uint64, struct{}]()
	c.Pend(42, struct{}{})
	require.True(t, c.Exists(42))

	c.Remove(42)
	require.False(t, c.Exists(42))
}

func TestCountReflectsLiveEntries(t *testing.T) {
	c := pending.New[int, int]()
	c.Pend(1, 1)
	c.Pend(2, 2)
	require.Equal(t, 2, c.Count())

	c.Remove(1)
	require.Equal(t, 1, c.Count())
}

func TestStopReturnsContentsAndClosesCollection(t *testing.T) {
	c := pending.New[string, int]()
	require.NoError(t, c.Store("a", 1))
	require.NoError(t, c.Store("b", 2))

	contents := c.Stop(network.ErrServiceStopped)
	require.Equal(t, map[string]int{"a": 1, "b": 2}, contents)
	require.True(t, c.Stopped())
	require.Equal(t, 0, c.Count())
}

func TestStopIsIdempotentAndReturnsNilOnSubsequentCalls(t *testing.T) {
	c := pending.New[string, int]()
	require.NoError(t, c.Store("a", 1))

	first := c.Stop(network.ErrServiceStopped)
	require.Len(t, first, 1)

	second := c.Stop(network.ErrServiceStopped)
	require.Nil(t, second)
}

func TestStoreAndPendFailAfterStop(t *testing.T) {
	c := pending.New[string, int]()
	c.Stop(network.ErrServiceStopped)

	err := c.Store("a", 1)
	require.Error(t, err)
	require.Equal(t, network.ErrServiceStopped, network.CodeOf(err))

	require.False(t, c.Pend("b", 2))
	require.Equal(t, 0, c.Count())
}
