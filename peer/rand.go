package peer

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

func defaultPseudoRandomInt64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return mrand.Int63n(n)
}

// NewNonce returns a fresh cryptographically random nonce suitable for a
// channel's self-connect detection value, grounded on peer.go's use of
// crypto/rand for its own nonces rather than math/rand.
func NewNonce() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(mrand.Int63())
	}
	return binary.LittleEndian.Uint64(buf[:])
}
