package peer

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func pipeProxies(t *testing.T) (*Proxy, *Proxy) {
	t.Helper()
	a, b := net.Pipe()
	codec := &stubCodec{}
	return NewProxy(a, codec, 8), NewProxy(b, codec, 8)
}

// stubCodec never actually blocks on real framing; it is only exercised
// far enough to prove timer and stop plumbing, not wire correctness.
type stubCodec struct{}

func (s *stubCodec) ReadMessage(r io.Reader) (netmsg.Message, error) {
	buf := make([]byte, 1)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return wire.NewMsgVerAck(), nil
}

func (s *stubCodec) WriteMessage(w io.Writer, msg netmsg.Message) error {
	_, err := w.Write([]byte{0})
	return err
}

func (s *stubCodec) Command(msg netmsg.Message) string { return msg.Command() }

func TestChannelNegotiatedVersionDefaultsToConfigured(t *testing.T) {
	a, _ := pipeProxies(t)
	defer a.Stop(codes.ErrChannelStopped)

	ch := NewChannel(a, NewNonce(), 70002, ChannelConfig{})
	require.Equal(t, uint32(70002), ch.NegotiatedVersion())

	ch.SetNegotiatedVersion(31402)
	require.Equal(t, uint32(31402), ch.NegotiatedVersion())
}

func TestChannelInactivityTimerStopsChannel(t *testing.T) {
	a, _ := pipeProxies(t)
	ch := NewChannel(a, NewNonce(), 70002, ChannelConfig{Inactivity: 10 * time.Millisecond})

	stopped := make(chan error, 1)
	ch.Start(func(err error) { stopped <- err })
	ch.StartTimers()

	select {
	case err := <-stopped:
		require.Equal(t, codes.ErrChannelTimeout, codes.CodeOf(err))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for inactivity stop")
	}
}

func TestChannelActivityResetsInactivityTimerOnInboundTraffic(t *testing.T) {
	a, b := pipeProxies(t)
	ch := NewChannel(a, NewNonce(), 70002, ChannelConfig{Inactivity: 50 * time.Millisecond})

	stopped := make(chan error, 1)
	ch.Start(func(err error) { stopped <- err })
	ch.StartTimers()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 6; i++ {
			time.Sleep(15 * time.Millisecond)
			if _, err := b.conn.Write([]byte{0}); err != nil {
				return
			}
		}
	}()

	select {
	case <-stopped:
		t.Fatal("channel stopped despite continuous inbound traffic")
	case <-done:
	}

	require.False(t, ch.Stopped())
	ch.Stop(codes.ErrChannelStopped)
}

func TestChannelStopIsIdempotent(t *testing.T) {
	a, _ := pipeProxies(t)
	ch := NewChannel(a, NewNonce(), 70002, ChannelConfig{})
	ch.Stop(codes.ErrChannelStopped)
	ch.Stop(codes.ErrChannelStopped)
	require.True(t, ch.Stopped())
}
