// Package geometry collects element outlines for a frame and turns them into
// triangle meshes the renderer can upload.
package geometry

import (
	"github.com/gogpu/gg"
)

// DefaultTolerance is the maximum distance, in local element units, between a curve
// and the polyline that approximates it.
const DefaultTolerance = 0.02

// Style describes how a shape's path is drawn.
type Style struct {
	Fill        bool
	Stroke      bool
	StrokeWidth float64
	LineCap     gg.LineCap
	Tolerance   float64
}

// Shape is a single path tagged with the id of the element that produced it.
// Paths are in the element's local normalized space, roughly within [-1, 1].
type Shape struct {
	ID    uint32
	Path  *gg.Path
	Style Style
}

// Buffer is the output target for element rendering. Elements append shapes tagged
// with their id; the renderer tessellates or rasterizes the buffer afterwards.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	shapes []Shape
}

// NewBuffer creates an empty Buffer with room for capacity shapes.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{shapes: make([]Shape, 0, max(capacity, 0))}
}

// Add appends a path for element id. A zero Tolerance is replaced with DefaultTolerance.
//
// Parameters:
//   - id: the element id the path belongs to
//   - path: the outline in local element space
//   - style: fill and stroke settings
func (b *Buffer) Add(id uint32, path *gg.Path, style Style) {
	if path == nil {
		return
	}
	if style.Tolerance <= 0 {
		style.Tolerance = DefaultTolerance
	}
	b.shapes = append(b.shapes, Shape{ID: id, Path: path, Style: style})
}

// Shapes returns the shapes added since the last Reset, in insertion order.
func (b *Buffer) Shapes() []Shape {
	return b.shapes
}

// ShapesFor returns the shapes tagged with id.
func (b *Buffer) ShapesFor(id uint32) []Shape {
	var out []Shape
	for _, s := range b.shapes {
		if s.ID == id {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of shapes in the buffer.
func (b *Buffer) Len() int {
	return len(b.shapes)
}

// Reset empties the buffer while keeping its backing storage.
func (b *Buffer) Reset() {
	clear(b.shapes)
	b.shapes = b.shapes[:0]
}
