// Package stream publishes rendered frames to external consumers.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// HeaderSize is the byte length of the frame header preceding the primitive records.
const HeaderSize = 16

// ErrShortFrame is returned when decoding a payload smaller than HeaderSize.
var ErrShortFrame = errors.New("stream: frame shorter than header")

// Frame is one published snapshot: its sequence number, timeline time and the
// serialized primitive buffer the renderer drew it with.
type Frame struct {
	Seq        uint64
	Time       float64
	Primitives []byte
}

// MarshalBinary encodes the frame as a little-endian header (seq u64, time f64)
// followed by the primitive bytes.
func (f Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize+len(f.Primitives))
	binary.LittleEndian.PutUint64(b[0:], f.Seq)
	binary.LittleEndian.PutUint64(b[8:], math.Float64bits(f.Time))
	copy(b[HeaderSize:], f.Primitives)
	return b, nil
}

// UnmarshalBinary decodes a payload produced by MarshalBinary. The primitive bytes are copied.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	f.Seq = binary.LittleEndian.Uint64(data[0:])
	f.Time = math.Float64frombits(binary.LittleEndian.Uint64(data[8:]))
	f.Primitives = append([]byte(nil), data[HeaderSize:]...)
	return nil
}
