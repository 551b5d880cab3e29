package renderer

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"unsafe"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/dom"
)

// DefaultPrimitiveCapacity is the number of primitive slots allocated when none is configured.
const DefaultPrimitiveCapacity = 256

// Primitive is the per-element GPU record, indexed by element id. Matches the
// Primitive struct in assets/primitive.wgsl.
type Primitive struct {
	Color     [4]float32
	Translate [2]float32
	ZIndex    int32
	Angle     float32
	Scale     float32
	_pad      [3]int32
}

// DefaultPrimitive is written to every slot without an element. Scale 1 and a zero
// color, so stale vertices referencing the slot draw nothing visible.
var DefaultPrimitive = Primitive{Scale: 1}

// Size returns the byte size of a Primitive.
func (p Primitive) Size() int {
	return int(unsafe.Sizeof(p))
}

// MarshalTo writes the primitive as little-endian bytes into buf, which must hold Size bytes.
func (p Primitive) MarshalTo(buf []byte) {
	for i, c := range p.Color {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(p.Translate[0]))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(p.Translate[1]))
	binary.LittleEndian.PutUint32(buf[24:], uint32(p.ZIndex))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(p.Angle))
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(p.Scale))
	clear(buf[36:48])
}

// PrimitiveBuffer is the CPU copy of the primitive storage buffer. Not safe for
// concurrent use; it belongs to the render goroutine.
type PrimitiveBuffer struct {
	records []Primitive
	bytes   []byte
	dirty   bool
}

// NewPrimitiveBuffer creates a buffer with capacity slots, all set to DefaultPrimitive.
//
// Parameters:
//   - capacity: the number of slots (DefaultPrimitiveCapacity if <= 0)
//
// Returns:
//   - *PrimitiveBuffer: the new buffer
func NewPrimitiveBuffer(capacity int) *PrimitiveBuffer {
	if capacity <= 0 {
		capacity = DefaultPrimitiveCapacity
	}
	pb := &PrimitiveBuffer{
		records: make([]Primitive, capacity),
		bytes:   make([]byte, capacity*DefaultPrimitive.Size()),
		dirty:   true,
	}
	for i := range pb.records {
		pb.records[i] = DefaultPrimitive
	}
	return pb
}

// Capacity returns the number of slots.
func (pb *PrimitiveBuffer) Capacity() int {
	return len(pb.records)
}

// At returns the record in slot id and whether the slot exists.
func (pb *PrimitiveBuffer) At(id uint32) (Primitive, bool) {
	if int(id) >= len(pb.records) {
		return Primitive{}, false
	}
	return pb.records[id], true
}

// Update rewrites every slot from snap. Slots without an element are reset to
// DefaultPrimitive. Elements whose id does not fit are skipped and reported together.
//
// Parameters:
//   - snap: the snapshot to copy element state from
//
// Returns:
//   - error: an error wrapping ErrPrimitiveCapacity listing the skipped ids, or nil
func (pb *PrimitiveBuffer) Update(snap dom.Snapshot) error {
	for i := range pb.records {
		pb.records[i] = DefaultPrimitive
	}
	pb.dirty = true

	var skipped []uint32
	for id, el := range snap.Elements {
		if int(id) >= len(pb.records) {
			skipped = append(skipped, id)
			continue
		}
		c := el.Color()
		x, y := el.Position()
		pb.records[id] = Primitive{
			Color: [4]float32{
				float32(c.R),
				float32(c.G),
				float32(c.B),
				float32(common.Clamp(el.Opacity(), 0, 1)),
			},
			Translate: [2]float32{float32(x), float32(y)},
			ZIndex:    el.ZIndex(),
			Angle:     float32(el.Angle()),
			Scale:     float32(el.Scale()),
		}
	}
	if len(skipped) > 0 {
		slices.Sort(skipped)
		return fmt.Errorf("%w: ids %v do not fit in %d slots", ErrPrimitiveCapacity, skipped, len(pb.records))
	}
	return nil
}

// Bytes returns the buffer serialized for upload. The slice is reused between calls.
func (pb *PrimitiveBuffer) Bytes() []byte {
	if pb.dirty {
		stride := DefaultPrimitive.Size()
		for i, p := range pb.records {
			p.MarshalTo(pb.bytes[i*stride:])
		}
		pb.dirty = false
	}
	return pb.bytes
}
