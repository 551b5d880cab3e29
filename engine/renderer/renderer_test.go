package renderer_test

import (
	"encoding/binary"
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/smoothie/engine/dom"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/Carmen-Shannon/smoothie/engine/renderer"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = colorful.Color{R: 1}
	blue = colorful.Color{B: 1}
)

func snapshot(seq uint64, els ...element.Element) dom.Snapshot {
	s := dom.Snapshot{Seq: seq, Elements: make(map[uint32]element.Element, len(els))}
	for _, el := range els {
		s.Elements[el.ID()] = el
	}
	return s
}

func rgb(img image.Image, x, y int) (r, g, b uint8) {
	cr, cg, cb, _ := img.At(x, y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

func TestPrimitive_Layout(t *testing.T) {
	p := renderer.Primitive{
		Color:     [4]float32{0.25, 0.5, 0.75, 1},
		Translate: [2]float32{3, -4},
		ZIndex:    -2,
		Angle:     1.5,
		Scale:     2,
	}
	require.Equal(t, 48, p.Size())

	buf := make([]byte, p.Size())
	for i := range buf {
		buf[i] = 0xFF
	}
	p.MarshalTo(buf)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(0.25), f(0))
	assert.Equal(t, float32(1), f(12))
	assert.Equal(t, float32(3), f(16))
	assert.Equal(t, float32(-4), f(20))
	assert.Equal(t, int32(-2), int32(binary.LittleEndian.Uint32(buf[24:])))
	assert.Equal(t, float32(1.5), f(28))
	assert.Equal(t, float32(2), f(32))
	assert.Equal(t, make([]byte, 12), buf[36:48])
}

func TestPrimitiveBuffer_Update(t *testing.T) {
	pb := renderer.NewPrimitiveBuffer(4)
	require.Equal(t, 4, pb.Capacity())
	require.Len(t, pb.Bytes(), 4*48)

	c := element.NewCircle(1,
		element.WithID(2),
		element.WithPosition(0.5, -0.25),
		element.WithOpacity(0.5),
		element.WithScale(3),
		element.WithZIndex(7),
		element.WithFill(red),
	)
	far := element.NewCircle(1, element.WithID(9))

	err := pb.Update(snapshot(1, c, far))
	require.ErrorIs(t, err, renderer.ErrPrimitiveCapacity)
	assert.Contains(t, err.Error(), "9")

	got, ok := pb.At(2)
	require.True(t, ok)
	assert.Equal(t, [4]float32{1, 0, 0, 0.5}, got.Color)
	assert.Equal(t, [2]float32{0.5, -0.25}, got.Translate)
	assert.Equal(t, int32(7), got.ZIndex)
	assert.Equal(t, float32(3), got.Scale)

	empty, ok := pb.At(1)
	require.True(t, ok)
	assert.Equal(t, renderer.DefaultPrimitive, empty)

	_, ok = pb.At(9)
	assert.False(t, ok)

	buf := pb.Bytes()
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[2*48+16:])))

	// Slots are reset when an element disappears.
	require.NoError(t, pb.Update(snapshot(2)))
	got, _ = pb.At(2)
	assert.Equal(t, renderer.DefaultPrimitive, got)
}

func TestParsePresentMode(t *testing.T) {
	assert.Equal(t, renderer.PresentModeUncapped, renderer.ParsePresentMode(" Uncapped "))
	assert.Equal(t, renderer.PresentModeVSync, renderer.ParsePresentMode("vsync"))
	assert.Equal(t, renderer.PresentModeVSync, renderer.ParsePresentMode("bogus"))
	assert.Equal(t, renderer.MSAAOff, renderer.ParseMSAA(1))
	assert.Equal(t, renderer.MSAA4x, renderer.ParseMSAA(3))
}

func TestNewRenderer_WGPURequiresSurface(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = renderer.NewRenderer(renderer.BackendTypeWGPU, nil)
	})
}

func newSoftware(t *testing.T, options ...renderer.RendererBuilderOption) renderer.Renderer {
	t.Helper()
	options = append([]renderer.RendererBuilderOption{renderer.WithResolution(100, 100)}, options...)
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware, nil, options...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestSoftwareRenderer_PixelCoverage(t *testing.T) {
	r := newSoftware(t)
	assert.Equal(t, renderer.BackendTypeSoftware, r.BackendType())

	c := element.NewCircle(0.5, element.WithID(1), element.WithFill(red))
	require.NoError(t, r.Render(snapshot(1, c)))

	img, err := r.Capture()
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())

	cr, cg, cb := rgb(img, 50, 50)
	assert.Equal(t, uint8(255), cr)
	assert.Less(t, cg, uint8(10))
	assert.Less(t, cb, uint8(10))

	cr, cg, cb = rgb(img, 2, 2)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{cr, cg, cb})
}

func TestSoftwareRenderer_Translate(t *testing.T) {
	r := newSoftware(t)

	// One world unit is 50px here; y grows up.
	c := element.NewCircle(0.2, element.WithID(1), element.WithFill(blue), element.WithPosition(0.5, 0.5))
	require.NoError(t, r.Render(snapshot(1, c)))
	img, err := r.Capture()
	require.NoError(t, err)

	_, _, b := rgb(img, 75, 25)
	cr, _, _ := rgb(img, 75, 25)
	assert.Equal(t, uint8(255), b)
	assert.Less(t, cr, uint8(10))

	cr, _, _ = rgb(img, 50, 50)
	assert.Equal(t, uint8(255), cr, "origin stays background")
}

func TestSoftwareRenderer_ZOrder(t *testing.T) {
	r := newSoftware(t)

	// Lower id but higher z-index must be drawn last.
	top := element.NewRectangle(1, 1, element.WithID(1), element.WithFill(red), element.WithZIndex(5))
	bottom := element.NewRectangle(1, 1, element.WithID(2), element.WithFill(blue))
	require.NoError(t, r.Render(snapshot(1, top, bottom)))

	img, err := r.Capture()
	require.NoError(t, err)
	cr, _, cb := rgb(img, 50, 50)
	assert.Equal(t, uint8(255), cr)
	assert.Less(t, cb, uint8(10))
}

func TestSoftwareRenderer_CapacitySkipsElement(t *testing.T) {
	r := newSoftware(t, renderer.WithPrimitiveCapacity(2))

	c := element.NewCircle(0.5, element.WithID(5), element.WithFill(red))
	require.NoError(t, r.Render(snapshot(1, c)))

	img, err := r.Capture()
	require.NoError(t, err)
	cr, cg, cb := rgb(img, 50, 50)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{cr, cg, cb})
}

func TestSoftwareRenderer_ClearColorAndOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r := newSoftware(t, renderer.WithOutputDir(dir), renderer.WithClearColor(colorful.Color{}))

	require.NoError(t, r.Render(snapshot(1)))
	require.NoError(t, r.Render(snapshot(1)))

	img, err := r.Capture()
	require.NoError(t, err)
	cr, cg, cb := rgb(img, 10, 10)
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{cr, cg, cb})

	for _, name := range []string{"frame_000000.png", "frame_000001.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRenderer_ResizeUpdatesCamera(t *testing.T) {
	r := newSoftware(t)
	r.Resize(320, 200)
	w, h := r.Camera().Resolution()
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)

	require.NoError(t, r.Render(snapshot(1)))
	img, err := r.Capture()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 200), img.Bounds())
}
