package element

import (
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/gogpu/gg"
)

// Circle is a filled disc centered on the element origin.
type Circle struct {
	Base
	radius   float64
	timeline Timeline[*Circle]
}

var _ Element = &Circle{}

var circleSetters = map[Property]keyframe.Setter[*Circle]{
	Radius: func(c *Circle, v float64) { c.radius = max(v, 0) },
}

// NewCircle creates a Circle with the given radius in local units.
//
// Parameters:
//   - radius: the circle radius, 1 fills the unit square
//   - options: functional options to configure the element
//
// Returns:
//   - *Circle: the newly created circle
func NewCircle(radius float64, options ...ElementBuilderOption) *Circle {
	return &Circle{Base: newBase(0, options...), radius: max(radius, 0)}
}

func (c *Circle) Radius() float64 {
	return c.radius
}

func (c *Circle) SetRadius(r float64) {
	c.radius = max(r, 0)
}

func (c *Circle) Render(into *geometry.Buffer, id uint32) {
	if c.radius <= 0 {
		return
	}
	p := gg.NewPath()
	p.Circle(0, 0, c.radius)
	into.Add(id, p, geometry.Style{
		Fill:        true,
		Stroke:      c.strokeWidth > 0,
		StrokeWidth: c.strokeWidth,
		LineCap:     gg.LineCapRound,
	})
}

func (c *Circle) UpdateWithKeyframes(t float64) {
	c.timeline.Update(c, t)
}

func (c *Circle) Property(p Property) (float64, bool) {
	if p == Radius {
		return c.radius, true
	}
	return c.baseProperty(p)
}

func (c *Circle) SetProperty(p Property, v float64) bool {
	if s, ok := circleSetters[p]; ok {
		s(c, v)
		return true
	}
	return c.setBaseProperty(p, v)
}

func (c *Circle) AddKeyframe(p Property, options ...keyframe.KeyframeBuilderOption) error {
	setter, ok := bind(circleSetters, func(x *Circle) *Base { return &x.Base }, p)
	if !ok {
		return ErrUnsupportedProperty
	}
	c.timeline.Add(p, keyframe.New(setter, options...))
	return nil
}

func (c *Circle) Keyframes() int {
	return c.timeline.Len()
}

func (c *Circle) LastTarget(p Property) (float64, bool) {
	return c.timeline.LastTarget(p)
}

func (c *Circle) ValueAt(p Property, t float64) (float64, bool) {
	return c.timeline.ValueAt(p, t)
}

func (c *Circle) TimelineEnd() float64 {
	return c.timeline.End()
}

func (c *Circle) Clone() Element {
	cl := *c
	cl.timeline = c.timeline.Clone()
	return &cl
}
