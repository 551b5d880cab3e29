package geometry

import (
	"math"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/gogpu/gg"
)

// maxSubdivisions bounds the number of line segments a single curve may produce.
const maxSubdivisions = 128

// polyline is one flattened subpath.
type polyline struct {
	points []gg.Point
	closed bool
}

// flatten converts path into polylines whose deviation from the curves is at most tolerance.
// Segment counts follow Wang's formula for Bezier curves.
func flatten(path *gg.Path, tolerance float64) []polyline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	var out []polyline
	var cur *polyline
	var current gg.Point

	finish := func(closed bool) {
		if cur != nil && len(cur.points) > 0 {
			cur.closed = closed
			out = append(out, *cur)
		}
		cur = nil
	}

	ensure := func() {
		if cur == nil {
			cur = &polyline{points: []gg.Point{current}}
		}
	}

	path.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			finish(false)
			current = gg.Pt(c[0], c[1])
			cur = &polyline{points: []gg.Point{current}}
		case gg.LineTo:
			ensure()
			pt := gg.Pt(c[0], c[1])
			cur.points = appendPoint(cur.points, pt)
			current = pt
		case gg.QuadTo:
			ensure()
			ctrl, pt := gg.Pt(c[0], c[1]), gg.Pt(c[2], c[3])
			n := segmentsFor(0.25*secondDifference(current, ctrl, pt), tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				cur.points = appendPoint(cur.points, quadAt(current, ctrl, pt, t))
			}
			current = pt
		case gg.CubicTo:
			ensure()
			c1, c2, pt := gg.Pt(c[0], c[1]), gg.Pt(c[2], c[3]), gg.Pt(c[4], c[5])
			m := math.Max(
				secondDifference(current, c1, c2),
				secondDifference(c1, c2, pt),
			)
			n := segmentsFor(0.75*m, tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				cur.points = appendPoint(cur.points, cubicAt(current, c1, c2, pt, t))
			}
			current = pt
		case gg.Close:
			if cur != nil {
				current = cur.points[0]
			}
			finish(true)
		}
	})
	finish(false)
	return out
}

func segmentsFor(scaled, tolerance float64) int {
	n := int(math.Ceil(math.Sqrt(scaled / tolerance)))
	return min(max(n, 1), maxSubdivisions)
}

func secondDifference(a, b, c gg.Point) float64 {
	return math.Hypot(a.X-2*b.X+c.X, a.Y-2*b.Y+c.Y)
}

func quadAt(p0, p1, p2 gg.Point, t float64) gg.Point {
	mt := 1 - t
	return gg.Pt(
		mt*mt*p0.X+2*mt*t*p1.X+t*t*p2.X,
		mt*mt*p0.Y+2*mt*t*p1.Y+t*t*p2.Y,
	)
}

func cubicAt(p0, p1, p2, p3 gg.Point, t float64) gg.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return gg.Pt(
		a*p0.X+b*p1.X+c*p2.X+d*p3.X,
		a*p0.Y+b*p1.Y+c*p2.Y+d*p3.Y,
	)
}

// appendPoint skips points that coincide with the previous one.
func appendPoint(points []gg.Point, p gg.Point) []gg.Point {
	if n := len(points); n > 0 {
		last := points[n-1]
		if common.NearlyEqual(last.X, p.X, 1e-12) && common.NearlyEqual(last.Y, p.Y, 1e-12) {
			return points
		}
	}
	return append(points, p)
}
