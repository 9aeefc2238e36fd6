// Package netresolve expands a configured DNS seed hostname into a list of
// candidate peer addresses, the way a node with an empty host pool
// bootstraps without any manually configured peers.
//
// Grounded on original_source/src/sessions/session_seed.cpp's reliance on
// a seed's own address-exchange reply for bootstrap (no separate DNS
// step is modeled there); this core adds a conventional Bitcoin-style DNS
// seed resolver on top, using github.com/miekg/dns the way a full node's
// net/dnsseed.go does, since a literal seed endpoint list alone yields too
// few addresses for an empty pool in practice.
package netresolve

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

// Resolver looks up DNS seed hostnames for A/AAAA records, each of which
// names a full node willing to answer a get_address request once dialed.
type Resolver struct {
	client *dns.Client
	server string
}

// NewResolver returns a Resolver that queries server ("host:port", e.g.
// "8.8.8.8:53") with timeout bounding each individual query.
func NewResolver(server string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{client: &dns.Client{Timeout: timeout}, server: server}
}

// Lookup resolves hostname's A and AAAA records into host:port authorities
// using defaultPort, returning as many as were found across both record
// types (a partial result is still useful, so a failure on one query type
// does not discard the other's successes).
func (r *Resolver) Lookup(ctx context.Context, hostname string, defaultPort uint16) ([]string, error) {
	var authorities []string

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(hostname), qtype)

		reply, _, err := r.client.ExchangeContext(ctx, msg, r.server)
		if err != nil {
			continue
		}

		for _, rr := range reply.Answer {
			var ip net.IP
			switch rec := rr.(type) {
			case *dns.A:
				ip = rec.A
			case *dns.AAAA:
				ip = rec.AAAA
			default:
				continue
			}
			authorities = append(authorities, net.JoinHostPort(ip.String(), strconv.Itoa(int(defaultPort))))
		}
	}

	return authorities, nil
}
