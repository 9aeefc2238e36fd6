package version

import (
	"net"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/stretchr/testify/require"
)

func newTestChannel(t *testing.T) *peer.Channel {
	t.Helper()
	conn, _ := net.Pipe()
	codec := netmsg.NewWireCodec(70002, wire.TestNet3)
	proxy := peer.NewProxy(conn, codec, 8)
	ch := peer.NewChannel(proxy, peer.NewNonce(), 70002, peer.ChannelConfig{})
	ch.Start(func(error) {})
	return ch
}

// These four cases cover the one-time configuration validation a
// handshake must reject before ever sending its own version message:
// minimum below the supported floor, maximum above the supported
// ceiling, minimum above maximum, and the valid case that should proceed.
func TestStartFailsOnMinimumBelowSupportedFloor(t *testing.T) {
	ch := newTestChannel(t)
	defer ch.Stop(codes.ErrChannelStopped)

	result := make(chan codes.Code, 1)
	p := New(ch, netmsg.NewWireCodec(70002, wire.TestNet3), Config{
		Level:          codes.LevelBIP61,
		OwnVersion:     70002,
		MinimumVersion: 1000,
	}, func(ec codes.Code) { result <- ec })
	p.Start()

	require.Equal(t, codes.ErrChannelStopped, <-result)
}

func TestStartFailsWhenMaximumAboveSupportedCeiling(t *testing.T) {
	ch := newTestChannel(t)
	defer ch.Stop(codes.ErrChannelStopped)

	result := make(chan codes.Code, 1)
	p := New(ch, netmsg.NewWireCodec(70002, wire.TestNet3), Config{
		Level:          codes.LevelBIP61,
		OwnVersion:     99999,
		MinimumVersion: codes.LevelMinimum,
	}, func(ec codes.Code) { result <- ec })
	p.Start()

	require.Equal(t, codes.ErrChannelStopped, <-result)
}

func TestStartFailsWhenMinimumAboveMaximum(t *testing.T) {
	ch := newTestChannel(t)
	defer ch.Stop(codes.ErrChannelStopped)

	result := make(chan codes.Code, 1)
	p := New(ch, netmsg.NewWireCodec(70002, wire.TestNet3), Config{
		Level:          codes.LevelBIP61,
		OwnVersion:     codes.LevelMinimum,
		MinimumVersion: codes.LevelBIP61,
	}, func(ec codes.Code) { result <- ec })
	p.Start()

	require.Equal(t, codes.ErrChannelStopped, <-result)
}

func TestStartProceedsWithValidConfig(t *testing.T) {
	ch := newTestChannel(t)
	defer ch.Stop(codes.ErrChannelStopped)

	p := New(ch, netmsg.NewWireCodec(70002, wire.TestNet3), Config{
		Level:          codes.LevelBIP61,
		OwnVersion:     70002,
		MinimumVersion: codes.LevelMinimum,
	}, func(codes.Code) {})
	p.Start()

	require.False(t, ch.Stopped())
}
