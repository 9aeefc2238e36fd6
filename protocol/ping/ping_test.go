package ping

import (
	"net"
	"testing"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/stretchr/testify/require"
)

// TestHeartbeatSurvivesMultiplePongRoundTrips runs two real bip31+ ping
// protocols against each other long enough to need several heartbeats.
// Without re-subscribing to CmdPong on every tick, only the first pong
// would ever be delivered, and the very next heartbeat would observe
// "still pending" and kill the channel with channel_timeout even though
// the peer is alive and answering correctly.
func TestHeartbeatSurvivesMultiplePongRoundTrips(t *testing.T) {
	a, b := net.Pipe()
	codec := netmsg.NewWireCodec(codes.LevelBIP31, wire.TestNet3)

	proxyA := peer.NewProxy(a, codec, 8)
	proxyB := peer.NewProxy(b, codec, 8)

	chA := peer.NewChannel(proxyA, peer.NewNonce(), codes.LevelBIP31, peer.ChannelConfig{})
	chB := peer.NewChannel(proxyB, peer.NewNonce(), codes.LevelBIP31, peer.ChannelConfig{})

	stoppedA := make(chan error, 1)
	stoppedB := make(chan error, 1)
	chA.Start(func(err error) { stoppedA <- err })
	chB.Start(func(err error) { stoppedB <- err })

	New(chA, Config{Level: codes.LevelBIP31, Heartbeat: 15 * time.Millisecond}).Start()
	New(chB, Config{Level: codes.LevelBIP31, Heartbeat: 15 * time.Millisecond}).Start()

	select {
	case err := <-stoppedA:
		t.Fatalf("channel A stopped unexpectedly: %v", err)
	case err := <-stoppedB:
		t.Fatalf("channel B stopped unexpectedly: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	require.False(t, chA.Stopped())
	require.False(t, chB.Stopped())

	chA.Stop(codes.ErrChannelStopped)
	chB.Stop(codes.ErrChannelStopped)
}
