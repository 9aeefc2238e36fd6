package hostdb_test

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/canitude/libaltcoin-network/hostdb"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, capacity int) *hostdb.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.db")
	s, err := hostdb.Open(path, capacity)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addr(ip string, port uint16) *wire.NetAddress {
	return &wire.NetAddress{
		Timestamp: time.Now(),
		IP:        net.ParseIP(ip),
		Port:      port,
	}
}

func TestStoreAndCount(t *testing.T) {
	s := openTestStore(t, 0)
	require.NoError(t, s.Store([]*wire.NetAddress{addr("1.2.3.4", 8333), addr("5.6.7.8", 8333)}))
	require.Equal(t, 2, s.Count())
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := openTestStore(t, 1)
	older := addr("1.1.1.1", 8333)
	older.Timestamp = time.Now().Add(-time.Hour)
	require.NoError(t, s.Store([]*wire.NetAddress{older}))
	require.NoError(t, s.Store([]*wire.NetAddress{addr("2.2.2.2", 8333)}))
	require.Equal(t, 1, s.Count())

	remaining := s.Sample(0)
	require.Len(t, remaining, 1)
	require.True(t, remaining[0].IP.Equal(net.ParseIP("2.2.2.2")))
}

func TestSampleRespectsMax(t *testing.T) {
	s := openTestStore(t, 0)
	require.NoError(t, s.Store([]*wire.NetAddress{addr("1.1.1.1", 8333), addr("2.2.2.2", 8333), addr("3.3.3.3", 8333)}))

	sample := s.Sample(2)
	require.Len(t, sample, 2)
}
