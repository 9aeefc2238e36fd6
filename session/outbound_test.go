package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/stretchr/testify/require"
)

func TestNewOutboundDefaultsRetryDelay(t *testing.T) {
	net := newFakeNetwork()
	o := NewOutbound(net, 0)

	require.Equal(t, 5*time.Second, o.retryDelay)
}

func TestOutboundCycleReturnsImmediatelyOnStoppedNetwork(t *testing.T) {
	net := newFakeNetwork()
	net.stopped = true
	o := NewOutbound(net, time.Millisecond)

	done := make(chan struct{})
	go func() {
		o.cycle(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cycle did not return on a stopped network")
	}
}

func TestOutboundCycleReturnsOnCancelledContext(t *testing.T) {
	net := newFakeNetwork()
	o := NewOutbound(net, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		o.cycle(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cycle did not return on a cancelled context")
	}
}

// TestAdoptReportsLiveWhenHandshakeSucceedsThenStops drives a real version
// handshake to completion and then hangs up, proving adopt's return value
// distinguishes "this channel was live and then stopped" from a failed
// dial/handshake attempt -- the signal cycle uses to skip its retry delay.
func TestAdoptReportsLiveWhenHandshakeSucceedsThenStops(t *testing.T) {
	fn := newFakeNetwork()
	o := NewOutbound(fn, time.Millisecond)

	connA, connB := net.Pipe()
	codec := fn.Codec()
	proxy := peer.NewProxy(connA, codec, 8)

	peerDone := make(chan struct{})
	go func() {
		defer close(peerDone)
		msg, err := codec.ReadMessage(connB)
		if err != nil {
			return
		}
		if _, ok := msg.(*wire.MsgVersion); !ok {
			return
		}

		reply := wire.NewMsgVersion(&wire.NetAddress{}, &wire.NetAddress{}, 0, 0)
		reply.ProtocolVersion = int32(fn.Settings().ProtocolMaximum)
		if err := codec.WriteMessage(connB, reply); err != nil {
			return
		}
		if err := codec.WriteMessage(connB, wire.NewMsgVerAck()); err != nil {
			return
		}

		codec.ReadMessage(connB)
		time.Sleep(20 * time.Millisecond)
		connB.Close()
	}()

	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- o.adopt(context.Background(), proxy)
	}()

	select {
	case live := <-resultCh:
		require.True(t, live, "expected adopt to report the channel was live before stopping")
	case <-time.After(2 * time.Second):
		t.Fatal("adopt did not return")
	}
	<-peerDone
}

// TestAdoptReportsNotLiveOnHandshakeFailure hangs up before ever replying to
// the outbound version message, so the handshake fails; adopt must report
// false, leaving cycle's retry delay in place for this round.
func TestAdoptReportsNotLiveOnHandshakeFailure(t *testing.T) {
	fn := newFakeNetwork()
	o := NewOutbound(fn, time.Millisecond)

	connA, connB := net.Pipe()
	codec := fn.Codec()
	proxy := peer.NewProxy(connA, codec, 8)

	go func() {
		codec.ReadMessage(connB)
		connB.Close()
	}()

	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- o.adopt(context.Background(), proxy)
	}()

	select {
	case live := <-resultCh:
		require.False(t, live, "expected adopt to report no live channel on handshake failure")
	case <-time.After(2 * time.Second):
		t.Fatal("adopt did not return")
	}
}
