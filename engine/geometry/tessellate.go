package geometry

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/gogpu/gg"
)

// roundCapSegments is the number of triangles used to approximate a half circle cap.
const roundCapSegments = 8

// Vertex is a single tessellated vertex as laid out in the GPU vertex buffer.
// PrimID selects the element's record in the primitive storage buffer.
type Vertex struct {
	Position [2]float32
	Normal   [2]float32
	PrimID   uint32
}

// Size returns the byte size of a Vertex.
func (v Vertex) Size() int {
	return int(unsafe.Sizeof(v))
}

// Marshal writes the vertex as little-endian bytes into buf, which must hold at least Size bytes.
func (v Vertex) Marshal(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(buf[16:], v.PrimID)
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Triangles returns the number of triangles in the mesh.
func (m Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// VertexBytes serializes the vertex list for upload.
func (m Mesh) VertexBytes() []byte {
	stride := Vertex{}.Size()
	buf := make([]byte, len(m.Vertices)*stride)
	for i, v := range m.Vertices {
		v.Marshal(buf[i*stride:])
	}
	return buf
}

// IndexBytes serializes the index list for upload.
func (m Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// Tessellate converts every shape in b into triangles tagged with the shape's element id.
// Fills use ear clipping on each subpath; strokes become quads with bevel joins.
//
// Parameters:
//   - b: the buffer to tessellate
//
// Returns:
//   - Mesh: the combined mesh for every shape in insertion order
func Tessellate(b *Buffer) Mesh {
	var m Mesh
	for _, s := range b.Shapes() {
		lines := flatten(s.Path, s.Style.Tolerance)
		if s.Style.Fill {
			for _, pl := range lines {
				m.fill(pl.points, s.ID)
			}
		}
		if s.Style.Stroke && s.Style.StrokeWidth > 0 {
			for _, pl := range lines {
				m.stroke(pl, s.Style, s.ID)
			}
		}
	}
	return m
}

func (m *Mesh) push(p gg.Point, nx, ny float64, id uint32) uint32 {
	m.Vertices = append(m.Vertices, Vertex{
		Position: [2]float32{float32(p.X), float32(p.Y)},
		Normal:   [2]float32{float32(nx), float32(ny)},
		PrimID:   id,
	})
	return uint32(len(m.Vertices) - 1)
}

func (m *Mesh) fill(points []gg.Point, id uint32) {
	pts := points
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return
	}

	base := uint32(len(m.Vertices))
	for _, p := range pts {
		m.push(p, 0, 0, id)
	}

	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	if signedArea(pts) < 0 {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	for len(order) > 3 {
		ear := findEar(pts, order)
		if ear < 0 {
			// Self-intersecting or degenerate remainder: fan it.
			for i := 1; i+1 < len(order); i++ {
				m.Indices = append(m.Indices, base+uint32(order[0]), base+uint32(order[i]), base+uint32(order[i+1]))
			}
			return
		}
		n := len(order)
		prev, next := order[(ear+n-1)%n], order[(ear+1)%n]
		m.Indices = append(m.Indices, base+uint32(prev), base+uint32(order[ear]), base+uint32(next))
		order = append(order[:ear], order[ear+1:]...)
	}
	m.Indices = append(m.Indices, base+uint32(order[0]), base+uint32(order[1]), base+uint32(order[2]))
}

func findEar(pts []gg.Point, order []int) int {
	n := len(order)
	for i := range order {
		a, b, c := pts[order[(i+n-1)%n]], pts[order[i]], pts[order[(i+1)%n]]
		if cross(a, b, c) <= 1e-12 {
			continue
		}
		contains := false
		for j := range order {
			if j == i || j == (i+n-1)%n || j == (i+1)%n {
				continue
			}
			if inTriangle(pts[order[j]], a, b, c) {
				contains = true
				break
			}
		}
		if !contains {
			return i
		}
	}
	return -1
}

func (m *Mesh) stroke(pl polyline, style Style, id uint32) {
	pts := pl.points
	closed := pl.closed
	if n := len(pts); closed && n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 2 {
		return
	}

	half := style.StrokeWidth / 2
	segs := len(pts) - 1
	if closed {
		segs = len(pts)
	}

	for i := range segs {
		a, b := pts[i], pts[(i+1)%len(pts)]
		nx, ny, ok := normal(a, b)
		if !ok {
			continue
		}
		v0 := m.push(gg.Pt(a.X+nx*half, a.Y+ny*half), nx, ny, id)
		v1 := m.push(gg.Pt(a.X-nx*half, a.Y-ny*half), -nx, -ny, id)
		v2 := m.push(gg.Pt(b.X+nx*half, b.Y+ny*half), nx, ny, id)
		v3 := m.push(gg.Pt(b.X-nx*half, b.Y-ny*half), -nx, -ny, id)
		m.Indices = append(m.Indices, v0, v1, v2, v2, v1, v3)
	}

	joins := len(pts) - 2
	start := 1
	if closed {
		joins = len(pts)
		start = 0
	}
	for k := range joins {
		i := start + k
		prev := pts[(i+len(pts)-1)%len(pts)]
		cur := pts[i%len(pts)]
		next := pts[(i+1)%len(pts)]
		m.bevel(prev, cur, next, half, id)
	}

	if !closed && style.LineCap == gg.LineCapRound {
		m.roundCap(pts[1], pts[0], half, id)
		m.roundCap(pts[len(pts)-2], pts[len(pts)-1], half, id)
	}
}

// bevel fills the wedge between two consecutive segment quads on both sides of cur.
func (m *Mesh) bevel(prev, cur, next gg.Point, half float64, id uint32) {
	n1x, n1y, ok1 := normal(prev, cur)
	n2x, n2y, ok2 := normal(cur, next)
	if !ok1 || !ok2 {
		return
	}
	c := m.push(cur, 0, 0, id)
	for _, side := range [2]float64{1, -1} {
		a := m.push(gg.Pt(cur.X+side*n1x*half, cur.Y+side*n1y*half), side*n1x, side*n1y, id)
		b := m.push(gg.Pt(cur.X+side*n2x*half, cur.Y+side*n2y*half), side*n2x, side*n2y, id)
		m.Indices = append(m.Indices, c, a, b)
	}
}

// roundCap adds a half disc at end, facing away from from.
func (m *Mesh) roundCap(from, end gg.Point, half float64, id uint32) {
	nx, ny, ok := normal(from, end)
	if !ok {
		return
	}
	c := m.push(end, 0, 0, id)
	base := math.Atan2(ny, nx)
	prev := m.push(gg.Pt(end.X+nx*half, end.Y+ny*half), nx, ny, id)
	for i := 1; i <= roundCapSegments; i++ {
		theta := base - math.Pi*float64(i)/roundCapSegments
		dx, dy := math.Cos(theta), math.Sin(theta)
		v := m.push(gg.Pt(end.X+dx*half, end.Y+dy*half), dx, dy, id)
		m.Indices = append(m.Indices, c, prev, v)
		prev = v
	}
}

// normal returns the left-hand unit normal of segment a->b.
func normal(a, b gg.Point) (float64, float64, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-12 {
		return 0, 0, false
	}
	return -dy / l, dx / l, true
}

// cross is positive when a, b, c turn counter-clockwise.
func cross(a, b, c gg.Point) float64 {
	return common.Cross2(b.X-a.X, b.Y-a.Y, c.X-a.X, c.Y-a.Y)
}

func signedArea(pts []gg.Point) float64 {
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += common.Cross2(pts[i].X, pts[i].Y, pts[j].X, pts[j].Y)
	}
	return area / 2
}

func inTriangle(p, a, b, c gg.Point) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}
