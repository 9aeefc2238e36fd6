package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterSucceedsAgainstFreshRegistry(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()

	require.NoError(t, m.Register(reg))
}

func TestRegisterFailsOnDuplicateRegistration(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()

	require.NoError(t, m.Register(reg))
	require.Error(t, m.Register(reg))
}

func TestCountersAndGaugesTrackValues(t *testing.T) {
	m := New()

	m.DialAttempts.WithLabelValues("outbound").Inc()
	m.DialFailures.WithLabelValues("not_found").Inc()
	m.Handshakes.WithLabelValues("success").Inc()
	m.ChannelsLive.Set(3)
	m.AddressesKnown.Set(1000)

	require.Equal(t, float64(1), testutil.ToFloat64(m.DialAttempts.WithLabelValues("outbound")))
	require.Equal(t, float64(3), testutil.ToFloat64(m.ChannelsLive))
	require.Equal(t, float64(1000), testutil.ToFloat64(m.AddressesKnown))
}
