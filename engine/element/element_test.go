package element_test

import (
	"testing"

	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(from, to, start, duration float64) []keyframe.KeyframeBuilderOption {
	return []keyframe.KeyframeBuilderOption{
		keyframe.WithFrom(from),
		keyframe.WithTo(to),
		keyframe.WithStart(start),
		keyframe.WithDuration(duration),
		keyframe.WithEasing(easing.Linear),
	}
}

func TestUpdate_LinearScaleMidpoint(t *testing.T) {
	a := element.NewArrow()
	require.NoError(t, a.AddKeyframe(element.Scale, span(0.2, 0.8, 0, 2)...))

	a.UpdateWithKeyframes(1.0)
	assert.InDelta(t, 0.5, a.Scale(), 1e-12)
}

func TestUpdate_AdjacentKeyframesAgreeAtBoundary(t *testing.T) {
	a := element.NewArrow()
	require.NoError(t, a.AddKeyframe(element.Angle, span(0, 1, 0, 1)...))
	last, ok := a.LastTarget(element.Angle)
	require.True(t, ok)
	require.NoError(t, a.AddKeyframe(element.Angle, span(last, 3, 1, 1)...))

	a.UpdateWithKeyframes(1.0)
	assert.Equal(t, 1.0, a.Angle())

	a.UpdateWithKeyframes(0.9999999)
	below := a.Angle()
	a.UpdateWithKeyframes(1.0000001)
	above := a.Angle()
	assert.InDelta(t, below, above, 1e-5)
}

func TestUpdate_NoActiveKeyframeKeepsValues(t *testing.T) {
	a := element.NewArrow(element.WithPosition(3, 4), element.WithScale(2))
	require.NoError(t, a.AddKeyframe(element.X, span(0, 10, 5, 1)...))

	a.UpdateWithKeyframes(1.0)
	x, y := a.Position()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
	assert.Equal(t, 2.0, a.Scale())
}

func TestUpdate_OverlapLastRegisteredWins(t *testing.T) {
	c := element.NewCircle(1)
	require.NoError(t, c.AddKeyframe(element.Opacity, span(0, 1, 0, 2)...))
	require.NoError(t, c.AddKeyframe(element.Opacity, span(0.9, 0.9, 0.5, 1)...))

	c.UpdateWithKeyframes(1.0)
	v, ok := c.Property(element.Opacity)
	require.True(t, ok)
	assert.InDelta(t, 0.9, v, 1e-12)

	// only the first is active here
	c.UpdateWithKeyframes(1.75)
	v, _ = c.Property(element.Opacity)
	assert.InDelta(t, 0.875, v, 1e-12)
}

func TestUpdate_Idempotent(t *testing.T) {
	r := element.NewRectangle(2, 2)
	require.NoError(t, r.AddKeyframe(element.Width, span(2, 4, 0, 1)...))

	r.UpdateWithKeyframes(0.3)
	w1, _ := r.Size()
	r.UpdateWithKeyframes(0.3)
	w2, _ := r.Size()
	assert.Equal(t, w1, w2)
}

func TestAddKeyframe_UnsupportedProperty(t *testing.T) {
	a := element.NewArrow()
	assert.ErrorIs(t, a.AddKeyframe(element.Radius, keyframe.WithTo(1)), element.ErrUnsupportedProperty)
	assert.ErrorIs(t, element.NewCircle(1).AddKeyframe(element.Width), element.ErrUnsupportedProperty)
	assert.NoError(t, element.NewCircle(1).AddKeyframe(element.Radius, keyframe.WithTo(2)))
	assert.Equal(t, 0, a.Keyframes())

	_, ok := a.Property(element.Height)
	assert.False(t, ok)
	assert.False(t, a.SetProperty(element.Height, 1))
}

func TestClone_IsIndependent(t *testing.T) {
	c := element.NewCircle(1, element.WithID(7))
	require.NoError(t, c.AddKeyframe(element.Radius, span(1, 2, 0, 1)...))

	clone := c.Clone()
	require.Equal(t, uint32(7), clone.ID())

	c.UpdateWithKeyframes(1)
	require.NoError(t, c.AddKeyframe(element.X, span(0, 1, 0, 1)...))

	r, _ := clone.Property(element.Radius)
	assert.Equal(t, 1.0, r)
	assert.Equal(t, 1, clone.Keyframes())
	assert.Equal(t, 2, c.Keyframes())

	clone.UpdateWithKeyframes(0.5)
	r, _ = clone.Property(element.Radius)
	assert.Equal(t, 1.5, r)
	assert.Equal(t, 2.0, c.Radius())
}

func TestRender_TagsShapesWithID(t *testing.T) {
	buf := geometry.NewBuffer(4)
	element.NewArrow().Render(buf, 3)
	element.NewCircle(0.5).Render(buf, 4)
	element.NewRectangle(0, 1).Render(buf, 5)

	arrow := buf.ShapesFor(3)
	require.Len(t, arrow, 1)
	assert.True(t, arrow[0].Style.Fill)
	assert.True(t, arrow[0].Style.Stroke)
	assert.Equal(t, element.ArrowStrokeWidth, arrow[0].Style.StrokeWidth)
	assert.Equal(t, element.ArrowTolerance, arrow[0].Style.Tolerance)

	assert.Len(t, buf.ShapesFor(4), 1)
	assert.Empty(t, buf.ShapesFor(5))
}

func TestColor_BlendsWithColorMix(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	a := element.NewArrow(element.WithFill(red), element.WithFillTarget(blue))

	assert.Equal(t, red, a.Color())
	a.SetProperty(element.ColorMix, 1)
	assert.Equal(t, blue, a.Color())
	a.SetProperty(element.ColorMix, 2)
	assert.Equal(t, blue, a.Color())

	plain := element.NewArrow(element.WithFill(red))
	plain.SetProperty(element.ColorMix, 0.5)
	assert.True(t, plain.Color().AlmostEqualRgb(red))
}

func TestDefaults(t *testing.T) {
	a := element.NewArrow()
	assert.Equal(t, 1.0, a.Scale())
	assert.Equal(t, 1.0, a.Opacity())
	assert.Equal(t, int32(0), a.ZIndex())
	assert.Equal(t, colorful.Color{G: 1}, a.Color())

	a.SetProperty(element.Opacity, 3)
	assert.Equal(t, 1.0, a.Opacity())
	a.SetProperty(element.ZIndex, 2.6)
	assert.Equal(t, int32(3), a.ZIndex())
}

func TestParseProperty(t *testing.T) {
	p, err := element.ParseProperty("Color_Mix")
	require.NoError(t, err)
	assert.Equal(t, element.ColorMix, p)
	assert.Equal(t, "color-mix", p.String())

	_, err = element.ParseProperty("depth")
	assert.ErrorIs(t, err, element.ErrUnsupportedProperty)
}

func TestTimelineEnd(t *testing.T) {
	a := element.NewArrow()
	assert.Equal(t, 0.0, a.TimelineEnd())
	require.NoError(t, a.AddKeyframe(element.X, span(0, 1, 1, 2)...))
	require.NoError(t, a.AddKeyframe(element.Y, span(0, 1, 0, 1)...))
	assert.Equal(t, 3.0, a.TimelineEnd())
}

func TestUpdate_StepThenClip(t *testing.T) {
	a := element.NewArrow()
	require.NoError(t, a.AddKeyframe(element.Scale, span(1, 0.5, 1, 0)...))
	require.NoError(t, a.AddKeyframe(element.Scale, span(0.5, 3, 1, 1)...))

	for _, tc := range []struct {
		at   float64
		want float64
	}{
		{0.5, 1},
		{1, 0.5},
		{1.5, 1.75},
		{2, 3},
		{2.5, 3},
		{5, 3},
	} {
		a.UpdateWithKeyframes(tc.at)
		assert.InDelta(t, tc.want, a.Scale(), 1e-12, "t=%v", tc.at)
	}
}

func TestUpdate_SettlesOnTargetBetweenTicks(t *testing.T) {
	a := element.NewArrow(element.WithScale(0.2))
	require.NoError(t, a.AddKeyframe(element.Scale, span(0.2, 0.8, 0, 2)...))

	for tick := 0.0; tick <= 3; tick += 0.0173 {
		a.UpdateWithKeyframes(tick)
	}
	assert.Equal(t, 0.8, a.Scale())
}

func TestUpdate_EndExactUnderRounding(t *testing.T) {
	a := element.NewArrow()
	require.NoError(t, a.AddKeyframe(element.Scale, span(0.1, 0.7, 0.1, 0.2)...))

	a.UpdateWithKeyframes(0.3)
	assert.Equal(t, 0.7, a.Scale())
}

func TestUpdate_FinishedClipYieldsToLaterOne(t *testing.T) {
	a := element.NewArrow()
	require.NoError(t, a.AddKeyframe(element.X, span(0, 4, 2, 1)...))
	require.NoError(t, a.AddKeyframe(element.X, span(0, 1, 0, 1)...))

	a.UpdateWithKeyframes(1.5)
	x, _ := a.Position()
	assert.Equal(t, 1.0, x)

	a.UpdateWithKeyframes(2.5)
	x, _ = a.Position()
	assert.InDelta(t, 2.0, x, 1e-12)

	a.UpdateWithKeyframes(10)
	x, _ = a.Position()
	assert.Equal(t, 4.0, x)
}

func TestValueAt(t *testing.T) {
	c := element.NewCircle(1)
	require.NoError(t, c.AddKeyframe(element.Radius, span(1, 3, 1, 2)...))

	_, ok := c.ValueAt(element.Radius, 0.5)
	assert.False(t, ok)
	v, ok := c.ValueAt(element.Radius, 2)
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-12)
	v, _ = c.ValueAt(element.Radius, 9)
	assert.Equal(t, 3.0, v)
	_, ok = c.ValueAt(element.Opacity, 2)
	assert.False(t, ok)
	assert.Equal(t, 1.0, c.Radius(), "ValueAt does not touch the element")
}
