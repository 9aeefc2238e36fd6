// Package nataddr discovers this node's own externally reachable address
// via NAT-PMP against the LAN gateway, so a node behind a home router can
// populate its self-announcement address without manual configuration.
//
// Grounded on original_source's configured_self/p2p::self() (a purely
// static, operator-configured address); this core supplements that with
// an automatic discovery path in the same vein, using
// github.com/jackpal/gateway to find the router and
// github.com/jackpal/go-nat-pmp to ask it for a mapping and our external
// IP, the same pair lnd's own nat package wires together.
package nataddr

import (
	"net"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/jackpal/gateway"
	natpmp "github.com/jackpal/go-nat-pmp"
)

// Discover finds the LAN gateway, asks it (via NAT-PMP) for this node's
// external IP, and requests a port mapping for internalPort good for
// leaseSeconds, returning the externally reachable address a peer should
// be told to dial.
func Discover(internalPort uint16, leaseSeconds int) (*wire.NetAddress, error) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		return nil, err
	}

	client := natpmp.NewClient(gw)

	extIP, err := client.GetExternalAddress()
	if err != nil {
		return nil, err
	}

	mapping, err := client.AddPortMapping("tcp", int(internalPort), int(internalPort), leaseSeconds)
	if err != nil {
		return nil, err
	}

	ip := extIP.ExternalIPAddress
	return &wire.NetAddress{
		Timestamp: time.Now(),
		IP:        net.IPv4(ip[0], ip[1], ip[2], ip[3]),
		Port:      mapping.MappedExternalPort,
	}, nil
}
