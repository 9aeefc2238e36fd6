package network

import (
	"time"

	"github.com/canitude/libaltcoin-network/codes"
)

// Config collects every tunable this package exposes, following the
// teacher's jessevdk/go-flags struct-tag convention for self-documenting
// settings.
type Config struct {
	// ProtocolMaximum and ProtocolMinimum bound the version numbers this
	// node will negotiate with a peer.
	ProtocolMaximum uint32 `long:"protocolmaximum" description:"highest protocol version to negotiate"`
	ProtocolMinimum uint32 `long:"protocolminimum" description:"lowest protocol version to accept"`

	// Services is this node's own advertised service bitfield.
	Services uint64 `long:"services" description:"advertised service bits"`

	// InvalidServices masks off service bits that immediately disqualify
	// a peer if set.
	InvalidServices uint64 `long:"invalidservices" description:"service bits that disqualify a peer"`

	// RelayTransactions controls the version message's relay flag for
	// bip61+ peers.
	RelayTransactions bool `long:"relay" description:"advertise transaction relay"`

	UserAgentName    string `long:"useragentname" description:"user agent name sent in version messages"`
	UserAgentVersion string `long:"useragentversion" description:"user agent version sent in version messages"`

	// InboundConnections is the cap enforced by the inbound session.
	InboundConnections uint32 `long:"maxinbound" description:"maximum accepted inbound connections"`

	// OutboundConnections is the number of independent connect cycles
	// the outbound session maintains.
	OutboundConnections uint32 `long:"maxoutbound" description:"number of outbound connect cycles to maintain"`

	// ConnectBatchSize is the fan-out width of a single connect round.
	ConnectBatchSize uint32 `long:"connectbatch" description:"parallel dial attempts per connect cycle"`

	ConnectTimeout    time.Duration `long:"connecttimeout" description:"dial timeout"`
	ChannelHandshake  time.Duration `long:"handshaketimeout" description:"handshake completion timeout"`
	ChannelHeartbeat  time.Duration `long:"heartbeat" description:"ping heartbeat interval"`
	ChannelInactivity time.Duration `long:"inactivitytimeout" description:"idle channel timeout"`
	ChannelExpiration time.Duration `long:"expirationtimeout" description:"maximum channel lifetime, 0 disables"`
	// ChannelGermination is not read by P2P; seed channels use
	// ChannelHandshake as their inactivity timeout.
	ChannelGermination time.Duration `long:"germinationtimeout" description:"seed channel handshake timeout"`

	// HostPoolCapacity is the target host store size; 0 disables seeding
	// and the address protocol's relay, and leaves the host store
	// unbounded.
	HostPoolCapacity uint32 `long:"hostpoolcapacity" description:"target address pool size, 0 disables seeding"`
	HostsFile        string `long:"hostsfile" description:"path to the bbolt-backed host store"`

	// Listen are local bind addresses the inbound session accepts
	// connections on; empty disables inbound entirely.
	Listen []string `long:"listen" description:"local bind address, repeatable"`

	// MinimumHostIncrease gates whether a seed round is judged to have
	// sufficiently grown the host pool; below this the seed round reports
	// peer_throttling, which Start logs before launching the other
	// sessions. The round is not repeated.
	MinimumHostIncrease uint32 `long:"minimumhostincrease" description:"minimum address-pool growth considered a successful seed round"`

	// Self is this node's own externally reachable authority, used by
	// the address protocol's self-announcement. Empty disables it.
	Self string `long:"self" description:"own externally reachable host:port"`

	// Seeds are hostname:port DNS-seed or literal endpoints consulted
	// when the host pool holds fewer than HostPoolCapacity addresses at
	// startup.
	Seeds []string `long:"seed" description:"seed endpoint, repeatable"`

	// Blacklist holds hosts or host:port authorities that the outbound and
	// seed sessions never dial. Manually configured peers and inbound
	// connections are not checked against it.
	Blacklist []string `long:"blacklist" description:"blocked host:port, repeatable"`

	// Peers are manually configured endpoints the manual session keeps
	// persistently connected.
	Peers []string `long:"peer" description:"manually persistent peer host:port, repeatable"`

	// UseTor routes outbound dials through a local SOCKS5 proxy.
	UseTor  bool   `long:"tor" description:"route outbound dials over Tor"`
	TorSocks string `long:"torsocks" description:"Tor SOCKS5 proxy address"`

	// UseUPNP is not read by P2P; NAT-PMP discovery of an external
	// address is available separately through nataddr.Discover.
	UseUPNP bool `long:"upnp" description:"discover an external address via NAT-PMP"`

	// MetricsEnabled is not read by P2P; metrics are attached with
	// P2P.UseMetrics.
	MetricsEnabled bool `long:"metrics" description:"register Prometheus connection metrics"`
}

// DefaultConfig returns the zero-risk defaults used when a caller does not
// override a field, mirroring bip31/bip61 thresholds from original_source.
func DefaultConfig() Config {
	return Config{
		ProtocolMaximum:      70002,
		ProtocolMinimum:      31402,
		InboundConnections:   8,
		OutboundConnections:  8,
		ConnectBatchSize:     5,
		ConnectTimeout:       5 * time.Second,
		ChannelHandshake:     30 * time.Second,
		ChannelHeartbeat:     2 * time.Minute,
		ChannelInactivity:    90 * time.Second,
		ChannelExpiration:    0,
		ChannelGermination:   30 * time.Second,
		HostPoolCapacity:     1000,
		HostsFile:            "hosts.db",
		MinimumHostIncrease:  1000,
		UserAgentName:        "/libaltcoin-network:1.0/",
		TorSocks:             "127.0.0.1:9050",
	}
}

// Protocol version levels referenced throughout session/protocol selection
// logic, re-exported from codes so external callers keep writing
// network.LevelBIP61 while internal packages depend on codes directly.
const (
	LevelMinimum = codes.LevelMinimum
	LevelBIP31   = codes.LevelBIP31
	LevelBIP61   = codes.LevelBIP61
)
