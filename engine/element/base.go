package element

import (
	"math"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/lucasb-eyer/go-colorful"
)

// Base holds the state every element shares. Shapes embed it and add their own geometry.
type Base struct {
	id          uint32
	x, y        float64
	scale       float64
	angle       float64
	opacity     float64
	colorMix    float64
	zIndex      float64
	strokeWidth float64
	fill        colorful.Color
	fillTarget  colorful.Color
}

var baseSetters = map[Property]keyframe.Setter[*Base]{
	X:           func(b *Base, v float64) { b.x = v },
	Y:           func(b *Base, v float64) { b.y = v },
	Scale:       func(b *Base, v float64) { b.scale = v },
	Angle:       func(b *Base, v float64) { b.angle = v },
	Opacity:     func(b *Base, v float64) { b.opacity = v },
	ColorMix:    func(b *Base, v float64) { b.colorMix = v },
	ZIndex:      func(b *Base, v float64) { b.zIndex = v },
	StrokeWidth: func(b *Base, v float64) { b.strokeWidth = max(v, 0) },
}

func newBase(strokeWidth float64, options ...ElementBuilderOption) Base {
	cfg := &config{
		base: Base{
			scale:       1,
			opacity:     1,
			strokeWidth: strokeWidth,
			fill:        colorful.Color{R: 0, G: 1, B: 0},
		},
	}
	for _, option := range options {
		option(cfg)
	}
	if !cfg.fillTargetSet {
		cfg.base.fillTarget = cfg.base.fill
	}
	return cfg.base
}

// bind picks the setter for p from a shape's own table, falling back to the shared Base setters.
func bind[T any](table map[Property]keyframe.Setter[T], base func(T) *Base, p Property) (keyframe.Setter[T], bool) {
	if s, ok := table[p]; ok {
		return s, true
	}
	bs, ok := baseSetters[p]
	if !ok {
		return nil, false
	}
	return func(target T, v float64) { bs(base(target), v) }, true
}

func (b *Base) ID() uint32 {
	return b.id
}

func (b *Base) SetID(id uint32) {
	b.id = id
}

func (b *Base) Position() (x, y float64) {
	return b.x, b.y
}

func (b *Base) SetPosition(x, y float64) {
	b.x, b.y = x, y
}

func (b *Base) Scale() float64 {
	return b.scale
}

func (b *Base) SetScale(s float64) {
	b.scale = s
}

// Angle returns the rotation in radians.
func (b *Base) Angle() float64 {
	return b.angle
}

func (b *Base) SetAngle(a float64) {
	b.angle = a
}

// ZIndex returns the draw order rounded to the nearest integer.
func (b *Base) ZIndex() int32 {
	return int32(math.Round(b.zIndex))
}

func (b *Base) SetZIndex(z int32) {
	b.zIndex = float64(z)
}

// Opacity returns the opacity clamped to [0, 1].
func (b *Base) Opacity() float64 {
	return common.Clamp(b.opacity, 0, 1)
}

func (b *Base) SetOpacity(o float64) {
	b.opacity = o
}

func (b *Base) StrokeWidth() float64 {
	return b.strokeWidth
}

func (b *Base) SetStrokeWidth(w float64) {
	b.strokeWidth = max(w, 0)
}

// Fill returns the base fill color and the color ColorMix blends towards.
func (b *Base) Fill() (fill, target colorful.Color) {
	return b.fill, b.fillTarget
}

// SetFill sets both fill colors.
func (b *Base) SetFill(fill, target colorful.Color) {
	b.fill, b.fillTarget = fill, target
}

// Color returns the fill blended towards the fill target in HCL space by ColorMix.
func (b *Base) Color() colorful.Color {
	mix := common.Clamp(b.colorMix, 0, 1)
	switch mix {
	case 0:
		return b.fill
	case 1:
		return b.fillTarget
	}
	return b.fill.BlendHcl(b.fillTarget, mix).Clamped()
}

func (b *Base) baseProperty(p Property) (float64, bool) {
	switch p {
	case X:
		return b.x, true
	case Y:
		return b.y, true
	case Scale:
		return b.scale, true
	case Angle:
		return b.angle, true
	case Opacity:
		return b.opacity, true
	case ColorMix:
		return b.colorMix, true
	case ZIndex:
		return b.zIndex, true
	case StrokeWidth:
		return b.strokeWidth, true
	}
	return 0, false
}

func (b *Base) setBaseProperty(p Property, v float64) bool {
	s, ok := baseSetters[p]
	if !ok {
		return false
	}
	s(b, v)
	return true
}
