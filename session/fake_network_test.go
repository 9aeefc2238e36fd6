package session

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/canitude/libaltcoin-network/connect"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/peer"
	"github.com/lightningnetwork/lnd/clock"
)

// fakeNetwork is a minimal, in-memory stand-in for the root p2p facade,
// used so session-layer tests do not need a real host store or
// dial/accept pipeline to exercise branching logic.
type fakeNetwork struct {
	mu sync.Mutex

	stopped    bool
	settings   Settings
	addresses  []*wire.NetAddress
	blacklist  map[string]bool
	nonces     map[uint64]bool
	channels   map[string]*peer.Channel
	inboundCnt int
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		settings: Settings{
			ProtocolMaximum:  70002,
			ProtocolMinimum:  31402,
			ConnectBatchSize: 1,
			ChannelHeartbeat: time.Minute,
		},
		blacklist: make(map[string]bool),
		nonces:    make(map[uint64]bool),
		channels:  make(map[string]*peer.Channel),
	}
}

func (f *fakeNetwork) Stopped() bool { f.mu.Lock(); defer f.mu.Unlock(); return f.stopped }

func (f *fakeNetwork) Settings() Settings { f.mu.Lock(); defer f.mu.Unlock(); return f.settings }

func (f *fakeNetwork) Codec() netmsg.Codec { return netmsg.NewWireCodec(70002, wire.MainNet) }

func (f *fakeNetwork) Clock() clock.Clock { return clock.NewDefaultClock() }

func (f *fakeNetwork) CreateConnector() *connect.Connector {
	return connect.NewConnector(connect.NewDirectDialer(), f.Codec(), time.Second)
}

func (f *fakeNetwork) StoreChannel(ch *peer.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.Authority()] = ch
	return nil
}

func (f *fakeNetwork) RemoveChannel(ch *peer.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, ch.Authority())
}

func (f *fakeNetwork) PendConnect(*connect.Connector)   {}
func (f *fakeNetwork) UnpendConnect(*connect.Connector) {}

func (f *fakeNetwork) PendNonce(nonce uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonces[nonce] = true
}

func (f *fakeNetwork) UnpendNonce(nonce uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.nonces, nonce)
}

func (f *fakeNetwork) NonceExists(nonce uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonces[nonce]
}

func (f *fakeNetwork) Blacklisted(authority string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blacklist[authority]
}

func (f *fakeNetwork) AddressCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.addresses)
}

func (f *fakeNetwork) StoreAddresses(addrs []*wire.NetAddress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, addrs...)
	return nil
}

func (f *fakeNetwork) SampleAddresses(max int) []*wire.NetAddress {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.addresses) > max {
		return f.addresses[:max]
	}
	return f.addresses
}

func (f *fakeNetwork) Self() *wire.NetAddress { return nil }

func (f *fakeNetwork) TopBlockHeight() int32 { return 0 }

func (f *fakeNetwork) InboundCount() int { f.mu.Lock(); defer f.mu.Unlock(); return f.inboundCnt }
