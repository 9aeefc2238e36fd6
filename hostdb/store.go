// Package hostdb implements the host store: a capacity-
// bounded, persisted set of candidate peer addresses, backed by
// go.etcd.io/bbolt.
//
// Grounded on backend-engineer1-land/channeldb/db.go's embedded-KV
// approach (that file opens boltdb/bolt directly for persistent state);
// this store uses the maintained go.etcd.io/bbolt fork for the same
// pattern: one top-level bucket, keyed by the 16-byte IP followed by the
// big-endian port, holding a gob-encoded Record.
package hostdb

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/btcsuite/btcd/wire"
	goerrors "github.com/go-errors/errors"
	bolt "go.etcd.io/bbolt"
)

var hostsBucket = []byte("hosts")

// Record is the persisted form of one candidate address.
type Record struct {
	Services  uint64
	Timestamp int64
	IP        [16]byte
	Port      uint16
}

// Store is a capacity-bounded, bbolt-persisted set of candidate
// addresses.
type Store struct {
	mu       sync.Mutex
	db       *bolt.DB
	capacity int
}

// Open opens (creating if needed) the bbolt database at path, bounding
// the store at capacity entries (0 means unbounded).
func Open(path string, capacity int) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, codes.New(codes.ErrOperationFailed, goerrors.Wrap(err, 1).Error())
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(hostsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, codes.New(codes.ErrOperationFailed, goerrors.Wrap(err, 1).Error())
	}

	return &Store{db: db, capacity: capacity}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

// Store persists addrs, overwriting any existing entry for the same
// authority and refreshing its timestamp. If capacity is exceeded,
// the oldest entries are evicted first.
func (s *Store) Store(addrs []*wire.NetAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(hostsBucket)
		for _, a := range addrs {
			rec := Record{Services: uint64(a.Services), Timestamp: a.Timestamp.Unix()}
			copy(rec.IP[:], a.IP.To16())
			rec.Port = a.Port

			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
				return err
			}
			if err := b.Put(authorityKey(a), buf.Bytes()); err != nil {
				return err
			}
		}
		return s.evictLocked(tx)
	})
}

func (s *Store) evictLocked(tx *bolt.Tx) error {
	if s.capacity <= 0 {
		return nil
	}
	b := tx.Bucket(hostsBucket)
	count := b.Stats().KeyN
	if count <= s.capacity {
		return nil
	}

	type entry struct {
		key []byte
		ts  int64
	}
	var entries []entry
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var rec Record
		if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&rec); err == nil {
			entries = append(entries, entry{key: append([]byte(nil), k...), ts: rec.Timestamp})
		}
	}

	excess := count - s.capacity
	for i := 0; i < len(entries) && excess > 0; i++ {
		oldestIdx := i
		for j := i + 1; j < len(entries); j++ {
			if entries[j].ts < entries[oldestIdx].ts {
				oldestIdx = j
			}
		}
		entries[i], entries[oldestIdx] = entries[oldestIdx], entries[i]
		if err := b.Delete(entries[i].key); err != nil {
			return err
		}
		excess--
	}
	return nil
}

// Sample returns up to max addresses chosen at random, matching the
// get_address reply's "send a sample, not the whole table" behavior.
func (s *Store) Sample(max int) []*wire.NetAddress {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*wire.NetAddress
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(hostsBucket)
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&rec); err != nil {
				return nil
			}
			all = append(all, recordToAddr(rec))
			return nil
		})
	})

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if max > 0 && len(all) > max {
		all = all[:max]
	}
	return all
}

// Count returns the number of stored addresses.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(hostsBucket).Stats().KeyN
		return nil
	})
	return n
}

func authorityKey(a *wire.NetAddress) []byte {
	buf := make([]byte, 18)
	copy(buf, a.IP.To16())
	binary.BigEndian.PutUint16(buf[16:], a.Port)
	return buf
}

func recordToAddr(rec Record) *wire.NetAddress {
	return &wire.NetAddress{
		Timestamp: time.Unix(rec.Timestamp, 0),
		Services:  wire.ServiceFlag(rec.Services),
		IP:        net.IP(append([]byte(nil), rec.IP[:]...)),
		Port:      rec.Port,
	}
}
