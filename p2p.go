// Package network is the root facade: P2P wires the host store, wire
// codec, connector/acceptor factories, and the four session types
// together into one service with a conventional Start/Stop/Close
// lifecycle.
//
// Grounded on original_source/src/p2p.cpp: start() opens the host store,
// runs a seed round if the pool needs it, then launches manual, inbound,
// and outbound sessions; store(channel)/unpend dedup by authority; stop()
// tears every session down and closes the store.
package network

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/connect"
	"github.com/canitude/libaltcoin-network/hostdb"
	"github.com/canitude/libaltcoin-network/metrics"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/canitude/libaltcoin-network/pending"
	"github.com/canitude/libaltcoin-network/session"
	"github.com/lightningnetwork/lnd/clock"
)

// P2P is the top-level entry point this module exposes to a host
// application: construct one with New, call Start, and it runs the
// session layer until Stop is called.
type P2P struct {
	cfg   Config
	clock clock.Clock
	codec netmsg.Codec

	hosts      *hostdb.Store
	channels   *pending.Collection[string, *peer.Channel]
	connectors *pending.Collection[*connect.Connector, struct{}]
	nonces     *pending.Collection[uint64, struct{}]

	blacklistMu sync.RWMutex
	blacklist   map[string]struct{}

	self      atomic.Pointer[wire.NetAddress]
	topHeight atomic.Int32
	metrics   *metrics.Metrics

	stopped int32
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	acceptors []*connect.Acceptor
}

// New opens the host store at cfg.HostsFile and returns an idle P2P
// instance. Call Start to begin the session layer.
func New(cfg Config) (*P2P, error) {
	capacity := int(cfg.HostPoolCapacity)
	hosts, err := hostdb.Open(cfg.HostsFile, capacity)
	if err != nil {
		return nil, err
	}

	p := &P2P{
		cfg:        cfg,
		clock:      clock.NewDefaultClock(),
		codec:      netmsg.NewWireCodec(cfg.ProtocolMaximum, wire.MainNet),
		hosts:      hosts,
		channels:   pending.New[string, *peer.Channel](),
		connectors: pending.New[*connect.Connector, struct{}](),
		nonces:     pending.New[uint64, struct{}](),
		blacklist:  make(map[string]struct{}, len(cfg.Blacklist)),
	}
	for _, authority := range cfg.Blacklist {
		p.blacklist[authority] = struct{}{}
	}
	if cfg.Self != "" {
		if addr := parseAuthority(cfg.Self, wire.SFNodeNetwork); addr != nil {
			p.self.Store(addr)
		}
	}
	return p, nil
}

// UseMetrics attaches m to this instance; from then on the live-channel
// gauge and the known-address gauge are updated. The dial-attempt,
// dial-failure and handshake counters are not updated by P2P. Call before
// Start.
func (p *P2P) UseMetrics(m *metrics.Metrics) {
	p.metrics = m
}

// SetTopBlockHeight updates the height advertised in this node's version
// messages, called by the host application as its chain tip advances.
func (p *P2P) SetTopBlockHeight(height int32) {
	p.topHeight.Store(height)
}

// Start seeds the host pool if it is running low, then launches the
// manual, inbound, and outbound sessions. It returns once every session
// has been launched; the sessions themselves continue running in the
// background until ctx is cancelled or Stop is called.
func (p *P2P) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	if p.hosts.Count() < int(p.cfg.HostPoolCapacity) && len(p.cfg.Seeds) > 0 {
		seedDone := make(chan codes.Code, 1)
		session.NewSeed(p, p.cfg.Seeds).Start(runCtx, func(ec codes.Code) { seedDone <- ec })
		select {
		case ec := <-seedDone:
			if ec != codes.ErrSuccess {
				log.Warnf("seed round did not sufficiently grow the host pool: %s", ec)
			}
		case <-time.After(p.cfg.ChannelHandshake + 30*time.Second):
			log.Warnf("seed round timed out")
		}
	}

	manual := session.NewManual(p, 5*time.Second)
	manual.Start(runCtx, p.cfg.Peers)

	for _, addr := range p.cfg.Listen {
		acceptor, err := connect.Listen(addr, p.codec)
		if err != nil {
			cancel()
			return err
		}
		p.acceptors = append(p.acceptors, acceptor)

		inbound := session.NewInbound(p, acceptor)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			inbound.Start(runCtx)
		}()
	}

	if p.cfg.OutboundConnections > 0 {
		outbound := session.NewOutbound(p, 0)
		outbound.Start(runCtx)
	}

	return nil
}

// Stop signals every running session to wind down and closes every
// listening acceptor. It does not block for sessions to finish; call
// Close afterward to release the host store once they have.
func (p *P2P) Stop() {
	if !atomic.CompareAndSwapInt32(&p.stopped, 0, 1) {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	for _, a := range p.acceptors {
		a.Stop()
	}

	// Closing all three collections here, rather than snapshotting with Each,
	// is what keeps a session that races past its own Stopped() check
	// from adopting a fresh channel or connector after this point: any
	// Store/Pend against a closed collection fails, so there is nothing
	// left to drain afterward.
	for c := range p.connectors.Stop(codes.ErrServiceStopped) {
		c.Stop()
	}
	for _, ch := range p.channels.Stop(codes.ErrServiceStopped) {
		ch.Stop(codes.ErrServiceStopped)
	}
	p.nonces.Stop(codes.ErrServiceStopped)
}

// Close waits for every launched goroutine to exit, then closes the host
// store. Call after Stop.
func (p *P2P) Close() error {
	p.wg.Wait()
	return p.hosts.Close()
}

// --- session.Network ---

func (p *P2P) Stopped() bool { return atomic.LoadInt32(&p.stopped) != 0 }

func (p *P2P) Settings() session.Settings {
	return session.Settings{
		ProtocolMaximum:     p.cfg.ProtocolMaximum,
		ProtocolMinimum:     p.cfg.ProtocolMinimum,
		Services:            p.cfg.Services,
		InvalidServices:     p.cfg.InvalidServices,
		RelayTransactions:   p.cfg.RelayTransactions,
		UserAgent:           p.userAgent(),
		InboundConnections:  p.cfg.InboundConnections,
		OutboundConnections: p.cfg.OutboundConnections,
		ConnectBatchSize:    p.cfg.ConnectBatchSize,
		ConnectTimeout:      p.cfg.ConnectTimeout,
		ChannelHandshake:    p.cfg.ChannelHandshake,
		ChannelHeartbeat:    p.cfg.ChannelHeartbeat,
		ChannelInactivity:   p.cfg.ChannelInactivity,
		ChannelExpiration:   p.cfg.ChannelExpiration,
		HostPoolCapacity:    p.cfg.HostPoolCapacity,
		MinimumHostIncrease: p.cfg.MinimumHostIncrease,
		Seeds:               p.cfg.Seeds,
	}
}

func (p *P2P) userAgent() string {
	if p.cfg.UserAgentVersion == "" {
		return p.cfg.UserAgentName
	}
	return p.cfg.UserAgentName + p.cfg.UserAgentVersion + "/"
}

func (p *P2P) Codec() netmsg.Codec { return p.codec }
func (p *P2P) Clock() clock.Clock  { return p.clock }

func (p *P2P) CreateConnector() *connect.Connector {
	var dialer connect.Dialer
	if p.cfg.UseTor {
		d, err := connect.NewTorDialer(p.cfg.TorSocks)
		if err != nil {
			log.Warnf("tor dialer unavailable, falling back to a direct dial: %v", err)
		} else {
			dialer = d
		}
	}
	if dialer == nil {
		dialer = connect.NewDirectDialer()
	}
	return connect.NewConnector(dialer, p.codec, p.cfg.ConnectTimeout)
}

// StoreChannel adopts channel into the live set keyed by authority,
// failing with address_in_use if a channel for that authority is already
// live, matching p2p.cpp's store() dedup.
func (p *P2P) StoreChannel(ch *peer.Channel) error {
	if err := p.channels.Store(ch.Authority(), ch); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.ChannelsLive.Inc()
	}
	return nil
}

func (p *P2P) RemoveChannel(ch *peer.Channel) {
	p.channels.Remove(ch.Authority())
	if p.metrics != nil {
		p.metrics.ChannelsLive.Dec()
	}
}

func (p *P2P) PendConnect(c *connect.Connector)   { p.connectors.Pend(c, struct{}{}) }
func (p *P2P) UnpendConnect(c *connect.Connector) { p.connectors.Remove(c) }

func (p *P2P) PendNonce(nonce uint64)   { p.nonces.Pend(nonce, struct{}{}) }
func (p *P2P) UnpendNonce(nonce uint64) { p.nonces.Remove(nonce) }
func (p *P2P) NonceExists(nonce uint64) bool { return p.nonces.Exists(nonce) }

func (p *P2P) Blacklisted(authority string) bool {
	host, _, err := net.SplitHostPort(authority)
	if err != nil {
		host = authority
	}
	p.blacklistMu.RLock()
	defer p.blacklistMu.RUnlock()
	_, blocked := p.blacklist[authority]
	if blocked {
		return true
	}
	_, blocked = p.blacklist[host]
	return blocked
}

func (p *P2P) AddressCount() int { return p.hosts.Count() }

func (p *P2P) StoreAddresses(addrs []*wire.NetAddress) error {
	err := p.hosts.Store(addrs)
	if err == nil && p.metrics != nil {
		p.metrics.AddressesKnown.Set(float64(p.hosts.Count()))
	}
	return err
}

func (p *P2P) SampleAddresses(max int) []*wire.NetAddress { return p.hosts.Sample(max) }

func (p *P2P) Self() *wire.NetAddress { return p.self.Load() }

func (p *P2P) TopBlockHeight() int32 { return p.topHeight.Load() }

func (p *P2P) InboundCount() int {
	n := 0
	p.channels.Each(func(_ string, ch *peer.Channel) {
		if ch.Inbound() {
			n++
		}
	})
	return n
}

func parseAuthority(authority string, services wire.ServiceFlag) *wire.NetAddress {
	host, portStr, err := net.SplitHostPort(authority)
	if err != nil {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	port, err := parsePort(portStr)
	if err != nil {
		return nil
	}
	return &wire.NetAddress{
		Timestamp: time.Now(),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, codes.New(codes.ErrOperationFailed, "invalid port")
	}
	return uint16(n), nil
}
