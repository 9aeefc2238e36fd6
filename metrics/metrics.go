// Package metrics exposes this core's Prometheus connection counters:
// dial attempts, handshake outcomes, and live channel gauges, registered
// only when a host application opts in.
//
// Grounded on backend-engineer1-land's own metrics wiring pattern
// (package-level prometheus.Collector vars registered against a
// caller-supplied registry) using github.com/prometheus/client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge this core emits. The zero value is
// unusable; construct one with New and register it with Register.
type Metrics struct {
	DialAttempts   *prometheus.CounterVec
	DialFailures   *prometheus.CounterVec
	Handshakes     *prometheus.CounterVec
	ChannelsLive   prometheus.Gauge
	AddressesKnown prometheus.Gauge
}

// New constructs an unregistered Metrics set.
func New() *Metrics {
	return &Metrics{
		DialAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "altcoin_network",
			Name:      "dial_attempts_total",
			Help:      "Outbound dial attempts, labeled by session type.",
		}, []string{"session"}),
		DialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "altcoin_network",
			Name:      "dial_failures_total",
			Help:      "Outbound dial attempts that did not yield a channel, labeled by code.",
		}, []string{"code"}),
		Handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "altcoin_network",
			Name:      "handshakes_total",
			Help:      "Completed version handshakes, labeled by outcome.",
		}, []string{"outcome"}),
		ChannelsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "altcoin_network",
			Name:      "channels_live",
			Help:      "Currently adopted channels.",
		}),
		AddressesKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "altcoin_network",
			Name:      "addresses_known",
			Help:      "Addresses currently held in the host store.",
		}),
	}
}

// Register registers every collector against reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.DialAttempts, m.DialFailures, m.Handshakes, m.ChannelsLive, m.AddressesKnown,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
