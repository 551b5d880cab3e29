package element

import (
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/gogpu/gg"
)

// Rectangle is an axis-aligned rectangle centered on the element origin.
type Rectangle struct {
	Base
	width, height float64
	timeline      Timeline[*Rectangle]
}

var _ Element = &Rectangle{}

var rectangleSetters = map[Property]keyframe.Setter[*Rectangle]{
	Width:  func(r *Rectangle, v float64) { r.width = max(v, 0) },
	Height: func(r *Rectangle, v float64) { r.height = max(v, 0) },
}

// NewRectangle creates a Rectangle with the given size in local units.
//
// Parameters:
//   - width: the rectangle width, 2 spans [-1, 1]
//   - height: the rectangle height, 2 spans [-1, 1]
//   - options: functional options to configure the element
//
// Returns:
//   - *Rectangle: the newly created rectangle
func NewRectangle(width, height float64, options ...ElementBuilderOption) *Rectangle {
	return &Rectangle{Base: newBase(0, options...), width: max(width, 0), height: max(height, 0)}
}

func (r *Rectangle) Size() (width, height float64) {
	return r.width, r.height
}

func (r *Rectangle) SetSize(width, height float64) {
	r.width, r.height = max(width, 0), max(height, 0)
}

func (r *Rectangle) Render(into *geometry.Buffer, id uint32) {
	if r.width <= 0 || r.height <= 0 {
		return
	}
	p := gg.NewPath()
	p.Rectangle(-r.width/2, -r.height/2, r.width, r.height)
	into.Add(id, p, geometry.Style{
		Fill:        true,
		Stroke:      r.strokeWidth > 0,
		StrokeWidth: r.strokeWidth,
	})
}

func (r *Rectangle) UpdateWithKeyframes(t float64) {
	r.timeline.Update(r, t)
}

func (r *Rectangle) Property(p Property) (float64, bool) {
	switch p {
	case Width:
		return r.width, true
	case Height:
		return r.height, true
	}
	return r.baseProperty(p)
}

func (r *Rectangle) SetProperty(p Property, v float64) bool {
	if s, ok := rectangleSetters[p]; ok {
		s(r, v)
		return true
	}
	return r.setBaseProperty(p, v)
}

func (r *Rectangle) AddKeyframe(p Property, options ...keyframe.KeyframeBuilderOption) error {
	setter, ok := bind(rectangleSetters, func(x *Rectangle) *Base { return &x.Base }, p)
	if !ok {
		return ErrUnsupportedProperty
	}
	r.timeline.Add(p, keyframe.New(setter, options...))
	return nil
}

func (r *Rectangle) Keyframes() int {
	return r.timeline.Len()
}

func (r *Rectangle) LastTarget(p Property) (float64, bool) {
	return r.timeline.LastTarget(p)
}

func (r *Rectangle) ValueAt(p Property, t float64) (float64, bool) {
	return r.timeline.ValueAt(p, t)
}

func (r *Rectangle) TimelineEnd() float64 {
	return r.timeline.End()
}

func (r *Rectangle) Clone() Element {
	cl := *r
	cl.timeline = r.timeline.Clone()
	return &cl
}
