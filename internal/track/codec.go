// Package track defines the vehicle position report message and its frame
// payload codec, the concrete codec QCTracker plugs into the telemetry
// transport.
package track

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/petiaccja/QCTracker/internal/telemetry"
)

// Position is one telemetry fix reported by the in-vehicle unit.
type Position struct {
	DeviceID   uint32
	Latitude   float64 // degrees, positive north
	Longitude  float64 // degrees, positive east
	SpeedKPH   float64
	HeadingDeg float64 // degrees clockwise from north
	Time       time.Time
}

// Frame payload layout, big-endian:
//
//	byte[0:4]   device id   (uint32)
//	byte[4:8]   latitude    (int32, degrees * 1e7)
//	byte[8:12]  longitude   (int32, degrees * 1e7)
//	byte[12:14] speed       (uint16, km/h * 10)
//	byte[14:16] heading     (uint16, degrees * 10)
//	byte[16:24] timestamp   (int64, Unix milliseconds)
const positionWireLen = 24

const degreeScale = 1e7

// ErrBadPosition is returned for payloads that are not a well-formed
// position report.
var ErrBadPosition = errors.New("malformed position report")

// PositionCodec implements telemetry.Codec for position reports.
type PositionCodec struct{}

func (PositionCodec) Decode(payload []byte) (telemetry.Message, error) {
	if len(payload) != positionWireLen {
		return nil, errors.Wrapf(ErrBadPosition, "want %d payload bytes, got %d", positionWireLen, len(payload))
	}

	p := Position{
		DeviceID:   binary.BigEndian.Uint32(payload[0:4]),
		Latitude:   float64(int32(binary.BigEndian.Uint32(payload[4:8]))) / degreeScale,
		Longitude:  float64(int32(binary.BigEndian.Uint32(payload[8:12]))) / degreeScale,
		SpeedKPH:   float64(binary.BigEndian.Uint16(payload[12:14])) / 10,
		HeadingDeg: float64(binary.BigEndian.Uint16(payload[14:16])) / 10,
		Time:       time.UnixMilli(int64(binary.BigEndian.Uint64(payload[16:24]))).UTC(),
	}

	if p.Latitude < -90 || p.Latitude > 90 {
		return nil, errors.Wrapf(ErrBadPosition, "latitude %f out of range", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return nil, errors.Wrapf(ErrBadPosition, "longitude %f out of range", p.Longitude)
	}

	return p, nil
}

func (PositionCodec) Encode(msg telemetry.Message) ([]byte, error) {
	p, ok := msg.(Position)
	if !ok {
		return nil, errors.Wrapf(ErrBadPosition, "unsupported message type %T", msg)
	}

	payload := make([]byte, positionWireLen)
	binary.BigEndian.PutUint32(payload[0:4], p.DeviceID)
	binary.BigEndian.PutUint32(payload[4:8], uint32(int32(math.Round(p.Latitude*degreeScale))))
	binary.BigEndian.PutUint32(payload[8:12], uint32(int32(math.Round(p.Longitude*degreeScale))))
	binary.BigEndian.PutUint16(payload[12:14], uint16(math.Round(p.SpeedKPH*10)))
	binary.BigEndian.PutUint16(payload[14:16], uint16(math.Round(p.HeadingDeg*10)))
	binary.BigEndian.PutUint64(payload[16:24], uint64(p.Time.UnixMilli()))
	return payload, nil
}
