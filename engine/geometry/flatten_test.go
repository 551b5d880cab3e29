package geometry

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_ReadsEveryVerb(t *testing.T) {
	p := gg.NewPath()
	p.MoveTo(0, 0)
	p.LineTo(1, 0)
	p.QuadraticTo(2, 0, 2, 1)
	p.CubicTo(2, 2, 1, 3, 0, 3)
	p.Close()
	p.MoveTo(5, 5)
	p.LineTo(6, 5)

	lines := flatten(p, 0.01)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.True(t, first.closed)
	assert.Equal(t, gg.Pt(0, 0), first.points[0])
	assert.Equal(t, gg.Pt(1, 0), first.points[1])
	assert.Contains(t, first.points, gg.Pt(2, 1), "quad end point")
	assert.Equal(t, gg.Pt(0, 3), first.points[len(first.points)-1], "cubic end point")
	assert.Greater(t, len(first.points), 4, "curves are subdivided")

	second := lines[1]
	assert.False(t, second.closed)
	assert.Equal(t, []gg.Point{gg.Pt(5, 5), gg.Pt(6, 5)}, second.points)
}

func TestFlatten_StraightCurveIsOneSegment(t *testing.T) {
	p := gg.NewPath()
	p.MoveTo(0, 0)
	p.QuadraticTo(1, 0, 2, 0)

	lines := flatten(p, 0.1)
	require.Len(t, lines, 1)
	assert.Equal(t, []gg.Point{gg.Pt(0, 0), gg.Pt(2, 0)}, lines[0].points)
}
