package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26 Crockford Base32 characters with a 48-bit
// millisecond timestamp prefix, so listing IDs sorts by submission time.
// A sequence counter replaces two random bytes when the clock reads the
// same millisecond twice.

var (
	jobIDMu  sync.Mutex
	jobIDTS  uint64
	jobIDSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func newJobID() string {
	jobIDMu.Lock()
	defer jobIDMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == jobIDTS {
		jobIDSeq++
	} else {
		jobIDTS = ts
		jobIDSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], jobIDSeq)

	return encodeBase32(b)
}

// encodeBase32 packs 128 bits into 26 characters. The stream is padded
// with two leading zero bits so each output character reads a clean 5-bit
// window.
func encodeBase32(b [16]byte) string {
	var src [17]byte
	copy(src[1:], b[:])

	var out [26]byte
	for i := range out {
		off := 6 + i*5
		v := uint16(src[off/8]) << 8
		if off/8+1 < len(src) {
			v |= uint16(src[off/8+1])
		}
		out[i] = crockford[(v>>(11-off%8))&0x1F]
	}
	return string(out[:])
}
