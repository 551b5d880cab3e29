package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GlobalsSource is the canonical WGSL definition of the Globals struct.
// Matches Globals layout exactly (24 bytes).
//
//go:embed assets/globals.wgsl
var GlobalsSource string

// Globals is the GPU-aligned representation of the per-frame view state uniform.
// Matches the WGSL Globals struct layout exactly (see GlobalsSource).
// Size: 24 bytes.
type Globals struct {
	Resolution [2]float32 // offset  0: surface size in pixels (vec2<f32>)
	Offset     [2]float32 // offset  8: world-space point shown at the viewport center (vec2<f32>)
	Zoom       float32    // offset 16: world to viewport scale factor (f32)
	_pad       int32      // offset 20: padding to 24 bytes
}

// Size returns the size of the Globals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (24)
func (g *Globals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the Globals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *Globals) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Offset[0]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Offset[1]))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Zoom))
	binary.LittleEndian.PutUint32(buf[20:], 0) // _pad
	return buf
}
