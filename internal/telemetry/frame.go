package telemetry

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

// Wire layout of one frame, big-endian throughout:
//
//	byte[0:2]     length    (uint16, payload size in bytes)
//	byte[2:2+N]   payload   (N = length, opaque to the transport)
//	byte[2+N:6+N] checksum  (uint32; 0 = verification skipped)
const (
	frameSizeLen     = 2
	frameChecksumLen = 4
	maxPayloadLen    = math.MaxUint16
)

// Checksum computes the 32-bit checksum of a frame over the 2-byte length
// prefix followed by the payload. A frame carrying checksum value 0 skips
// verification entirely, so implementations whose result could be 0 should
// map it to a nonzero value when producing frames.
type Checksum func(size, payload []byte) uint32

// crc32Checksum is the default Checksum: CRC-32 (IEEE) over length prefix
// and payload.
func crc32Checksum(size, payload []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(size)
	h.Write(payload)
	return h.Sum32()
}

// appendFrame appends one complete frame for the given payload to dst:
// length prefix, payload, checksum trailer.
func appendFrame(dst, payload []byte, sum Checksum) ([]byte, error) {
	if len(payload) > maxPayloadLen {
		return nil, ErrPayloadTooLarge
	}

	var size [frameSizeLen]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(payload)))

	var trailer [frameChecksumLen]byte
	binary.BigEndian.PutUint32(trailer[:], sum(size[:], payload))

	dst = append(dst, size[:]...)
	dst = append(dst, payload...)
	return append(dst, trailer[:]...), nil
}
