package element

import (
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/gogpu/gg"
)

const (
	// ArrowStrokeWidth is the default outline width of an Arrow.
	ArrowStrokeWidth = 0.05
	// ArrowTolerance is the flattening tolerance used for Arrow outlines.
	ArrowTolerance = 0.02
)

// Arrow is a right-pointing arrow spanning [-1, 1] on x with a filled body and a round-capped outline.
type Arrow struct {
	Base
	timeline Timeline[*Arrow]
}

var _ Element = &Arrow{}

var arrowSetters = map[Property]keyframe.Setter[*Arrow]{}

// NewArrow creates an Arrow configured with the given options.
//
// Parameters:
//   - options: functional options to configure the element
//
// Returns:
//   - *Arrow: the newly created arrow
func NewArrow(options ...ElementBuilderOption) *Arrow {
	return &Arrow{Base: newBase(ArrowStrokeWidth, options...)}
}

func arrowPath() *gg.Path {
	p := gg.NewPath()
	p.MoveTo(-1, -0.2)
	p.LineTo(0, -0.2)
	p.LineTo(0, -0.8)
	p.LineTo(1, 0)
	p.LineTo(0, 0.8)
	p.LineTo(0, 0.2)
	p.LineTo(-1, 0.2)
	p.Close()
	return p
}

func (a *Arrow) Render(into *geometry.Buffer, id uint32) {
	into.Add(id, arrowPath(), geometry.Style{
		Fill:        true,
		Stroke:      a.strokeWidth > 0,
		StrokeWidth: a.strokeWidth,
		LineCap:     gg.LineCapRound,
		Tolerance:   ArrowTolerance,
	})
}

func (a *Arrow) UpdateWithKeyframes(t float64) {
	a.timeline.Update(a, t)
}

func (a *Arrow) Property(p Property) (float64, bool) {
	return a.baseProperty(p)
}

func (a *Arrow) SetProperty(p Property, v float64) bool {
	return a.setBaseProperty(p, v)
}

func (a *Arrow) AddKeyframe(p Property, options ...keyframe.KeyframeBuilderOption) error {
	setter, ok := bind(arrowSetters, func(x *Arrow) *Base { return &x.Base }, p)
	if !ok {
		return ErrUnsupportedProperty
	}
	a.timeline.Add(p, keyframe.New(setter, options...))
	return nil
}

func (a *Arrow) Keyframes() int {
	return a.timeline.Len()
}

func (a *Arrow) LastTarget(p Property) (float64, bool) {
	return a.timeline.LastTarget(p)
}

func (a *Arrow) ValueAt(p Property, t float64) (float64, bool) {
	return a.timeline.ValueAt(p, t)
}

func (a *Arrow) TimelineEnd() float64 {
	return a.timeline.End()
}

func (a *Arrow) Clone() Element {
	c := *a
	c.timeline = a.timeline.Clone()
	return &c
}
