package peer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/lightningnetwork/lnd/clock"
)

// Channel wraps a Proxy with the session-facing identity and lifecycle a
// registered peer connection needs: a random nonce for self-connect
// detection, the negotiated protocol version agreed during handshake, and
// the inactivity/expiration timers that apply once a channel is live.
//
// Grounded on original_source/src/channel.cpp: construction seeds
// negotiated_version to the configured maximum (raised or lowered only by
// the version protocol), start() arms the expiration timer (jittered) and
// the inactivity timer, and stopped(ec) is true once either the proxy or
// ec itself indicates termination.
type Channel struct {
	*Proxy

	clock clock.Clock

	nonce             uint64
	negotiatedVersion uint32

	inactivity time.Duration
	expiration time.Duration
	inbound    bool

	mu            sync.Mutex
	inactivityTmr *time.Timer
	expirationTmr *time.Timer
	notify        []func(error)
}

// ChannelConfig carries the per-channel timer settings a session supplies
// at registration time.
type ChannelConfig struct {
	Inactivity time.Duration
	Expiration time.Duration
	Clock      clock.Clock
	Inbound    bool
}

// NewChannel constructs a Channel over an already-connected Proxy. nonce
// should be a fresh pseudo-random value; negotiatedVersion should start at
// the node's configured protocol maximum.
func NewChannel(proxy *Proxy, nonce uint64, negotiatedVersion uint32, cfg ChannelConfig) *Channel {
	cl := cfg.Clock
	if cl == nil {
		cl = clock.NewDefaultClock()
	}
	c := &Channel{
		Proxy:             proxy,
		clock:             cl,
		nonce:             nonce,
		negotiatedVersion: negotiatedVersion,
		inactivity:        cfg.Inactivity,
		expiration:        cfg.Expiration,
		inbound:           cfg.Inbound,
	}
	proxy.OnActivity(c.Activity)
	return c
}

// Inbound reports whether this channel originated from an accepted
// connection rather than an outbound dial.
func (c *Channel) Inbound() bool { return c.inbound }

// Nonce returns this channel's self-connect detection nonce.
func (c *Channel) Nonce() uint64 { return atomic.LoadUint64(&c.nonce) }

// NegotiatedVersion returns the protocol version agreed with the peer, or
// the configured maximum before a handshake completes.
func (c *Channel) NegotiatedVersion() uint32 {
	return atomic.LoadUint32(&c.negotiatedVersion)
}

// SetNegotiatedVersion stores v as the negotiated version. It does not
// clamp v; the version protocol passes the lower of its own maximum and
// the peer's value.
func (c *Channel) SetNegotiatedVersion(v uint32) {
	atomic.StoreUint32(&c.negotiatedVersion, v)
}

// StartTimers arms the inactivity and (if configured) expiration timers.
// Either firing stops the channel with channel_timeout, matching
// channel.cpp's start_expiration/start_inactivity.
func (c *Channel) StartTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inactivity > 0 {
		c.inactivityTmr = time.AfterFunc(c.inactivity, func() {
			c.Stop(codes.ErrChannelTimeout)
		})
	}
	if c.expiration > 0 {
		jittered := jitter(c.expiration)
		c.expirationTmr = time.AfterFunc(jittered, func() {
			c.Stop(codes.ErrChannelTimeout)
		})
	}
}

// Activity resets the inactivity timer. The proxy's read loop calls it
// after every successfully decoded inbound message; outbound writes do not
// reset it.
func (c *Channel) Activity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inactivityTmr != nil {
		c.inactivityTmr.Reset(c.inactivity)
	}
}

// Stop cancels both timers before delegating to Proxy.Stop.
func (c *Channel) Stop(ec codes.Code) {
	c.mu.Lock()
	if c.inactivityTmr != nil {
		c.inactivityTmr.Stop()
	}
	if c.expirationTmr != nil {
		c.expirationTmr.Stop()
	}
	c.mu.Unlock()
	c.Proxy.Stop(ec)
}

// StoppedWith reports whether ec, combined with the channel's own stopped
// state, should be treated as terminal by a caller deciding whether to
// keep interacting with the channel.
func (c *Channel) StoppedWith(ec codes.Code) bool {
	return c.Proxy.Stopped() || codes.IsTerminal(ec)
}

// SendMessage is a typed convenience wrapper so session code does not need
// to reach through Channel.Proxy.
func (c *Channel) SendMessage(msg netmsg.Message) { c.Proxy.Send(msg) }

// jitter shortens timer expiry by a random amount of up to half the
// configured duration, so the result lies in [d - d/2, d], mirroring
// original_source's pseudo_randomize helper so many channels
// created around the same time do not all expire in lockstep.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	half := d / 2
	offset := time.Duration(pseudoRandomInt64(int64(d))) % (half + 1)
	return d - half + offset
}

// pseudoRandomInt64 is a package-level var so a test can replace it for
// determinism; by default it uses the PRNG from math/rand.
var pseudoRandomInt64 = defaultPseudoRandomInt64
