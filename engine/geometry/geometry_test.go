package geometry_test

import (
	"testing"

	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() *gg.Path {
	p := gg.NewPath()
	p.MoveTo(-1, -1)
	p.LineTo(1, -1)
	p.LineTo(1, 1)
	p.LineTo(-1, 1)
	p.Close()
	return p
}

func TestBufferAddAndReset(t *testing.T) {
	b := geometry.NewBuffer(4)
	b.Add(3, square(), geometry.Style{Fill: true})
	b.Add(5, square(), geometry.Style{Stroke: true, StrokeWidth: 0.1})
	b.Add(7, nil, geometry.Style{Fill: true})

	require.Equal(t, 2, b.Len())
	assert.Len(t, b.ShapesFor(3), 1)
	assert.Len(t, b.ShapesFor(5), 1)
	assert.Empty(t, b.ShapesFor(7))
	assert.Equal(t, geometry.DefaultTolerance, b.Shapes()[0].Style.Tolerance)

	b.Reset()
	assert.Equal(t, 0, b.Len())
}

func TestTessellateFillSquare(t *testing.T) {
	b := geometry.NewBuffer(1)
	b.Add(9, square(), geometry.Style{Fill: true})

	m := geometry.Tessellate(b)
	require.Len(t, m.Vertices, 4)
	assert.Equal(t, 2, m.Triangles())
	for _, v := range m.Vertices {
		assert.Equal(t, uint32(9), v.PrimID)
	}
	for _, idx := range m.Indices {
		assert.Less(t, idx, uint32(len(m.Vertices)))
	}
}

func TestTessellateFillConcave(t *testing.T) {
	// arrow outline, seven points with two reflex corners
	p := gg.NewPath()
	p.MoveTo(-1, -0.2)
	p.LineTo(0, -0.2)
	p.LineTo(0, -0.8)
	p.LineTo(1, 0)
	p.LineTo(0, 0.8)
	p.LineTo(0, 0.2)
	p.LineTo(-1, 0.2)
	p.Close()

	b := geometry.NewBuffer(1)
	b.Add(1, p, geometry.Style{Fill: true})
	m := geometry.Tessellate(b)

	assert.Equal(t, 5, m.Triangles())

	var area float64
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Position
		c := m.Vertices[m.Indices[i+1]].Position
		d := m.Vertices[m.Indices[i+2]].Position
		cr := float64((c[0]-a[0])*(d[1]-a[1]) - (c[1]-a[1])*(d[0]-a[0]))
		if cr < 0 {
			cr = -cr
		}
		area += cr / 2
	}
	// shaft 1.0 x 0.4 plus head 1.0 x 1.6 / 2
	assert.InDelta(t, 1.2, area, 1e-5)
}

func TestTessellateCurvesRespectTolerance(t *testing.T) {
	coarse := gg.NewPath()
	coarse.Circle(0, 0, 1)
	fine := gg.NewPath()
	fine.Circle(0, 0, 1)

	bc := geometry.NewBuffer(1)
	bc.Add(0, coarse, geometry.Style{Fill: true, Tolerance: 0.1})
	bf := geometry.NewBuffer(1)
	bf.Add(0, fine, geometry.Style{Fill: true, Tolerance: 0.001})

	assert.Less(t, len(geometry.Tessellate(bc).Vertices), len(geometry.Tessellate(bf).Vertices))
}

func TestTessellateStroke(t *testing.T) {
	p := gg.NewPath()
	p.MoveTo(0, 0)
	p.LineTo(1, 0)

	b := geometry.NewBuffer(1)
	b.Add(2, p, geometry.Style{Stroke: true, StrokeWidth: 0.5, LineCap: gg.LineCapButt})
	m := geometry.Tessellate(b)

	require.Len(t, m.Vertices, 4)
	assert.Equal(t, 2, m.Triangles())
	for _, v := range m.Vertices {
		assert.InDelta(t, 0.25, abs32(v.Position[1]), 1e-6)
	}

	b.Reset()
	b.Add(2, p, geometry.Style{Stroke: true, StrokeWidth: 0.5, LineCap: gg.LineCapRound})
	rounded := geometry.Tessellate(b)
	assert.Greater(t, rounded.Triangles(), m.Triangles())
}

func TestMeshBytes(t *testing.T) {
	m := geometry.Mesh{
		Vertices: []geometry.Vertex{{Position: [2]float32{1, 2}, PrimID: 4}},
		Indices:  []uint32{0, 0, 0},
	}
	vb := m.VertexBytes()
	require.Len(t, vb, 20)
	assert.Equal(t, byte(4), vb[16])
	assert.Len(t, m.IndexBytes(), 12)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
