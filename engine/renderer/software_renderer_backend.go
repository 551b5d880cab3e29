package renderer

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/gogpu/gg"
)

// softwareRendererBackendImpl rasterizes element paths on the CPU with gg. It draws the
// original curves rather than the tessellated mesh and optionally writes every presented
// frame to a PNG file.
type softwareRendererBackendImpl struct {
	mu  *sync.Mutex
	ctx *gg.Context

	// outputDir receives frame_NNNNNN.png files on Present. Empty disables output.
	outputDir string
	frames    int
	drawn     bool
}

var _ RendererBackend = &softwareRendererBackendImpl{}

func newSoftwareRendererBackend(width, height int, outputDir string) (*softwareRendererBackendImpl, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("renderer: create output dir: %w", err)
		}
	}
	return &softwareRendererBackendImpl{
		mu:        &sync.Mutex{},
		ctx:       gg.NewContext(max(width, 1), max(height, 1)),
		outputDir: outputDir,
	}, nil
}

func (b *softwareRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}
	return b.ctx.Resize(width, height)
}

func (b *softwareRendererBackendImpl) SetPresentMode(PresentMode) {}

func (b *softwareRendererBackendImpl) DrawFrame(f *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	clearColor := f.ClearColor.Clamped()
	b.ctx.ClearWithColor(gg.RGB(clearColor.R, clearColor.G, clearColor.B))

	w, h := float64(b.ctx.Width()), float64(b.ctx.Height())
	zoom := float64(f.Globals.Zoom)
	if zoom <= 0 {
		zoom = 1
	}
	ppu := math.Min(w, h) / 2 * zoom

	var errs []error
	for _, id := range f.Order {
		prim, ok := f.Primitives.At(id)
		if !ok || prim.Color[3] <= 0 {
			continue
		}
		shapes := f.Geometry.ShapesFor(id)
		if len(shapes) == 0 {
			continue
		}

		b.ctx.Push()
		b.ctx.Identity()
		b.ctx.Translate(w/2, h/2)
		b.ctx.Scale(ppu, -ppu)
		b.ctx.Translate(-float64(f.Globals.Offset[0]), -float64(f.Globals.Offset[1]))
		b.ctx.Translate(float64(prim.Translate[0]), float64(prim.Translate[1]))
		b.ctx.Rotate(float64(prim.Angle))
		b.ctx.Scale(float64(prim.Scale), float64(prim.Scale))

		for _, s := range shapes {
			if err := b.drawShape(s, prim); err != nil {
				errs = append(errs, fmt.Errorf("element %d: %w", id, err))
			}
		}
		b.ctx.Pop()
	}
	b.drawn = true
	return errors.Join(errs...)
}

// drawShape fills and/or strokes one shape under the current transform. Callers must hold the mutex.
func (b *softwareRendererBackendImpl) drawShape(s geometry.Shape, prim Primitive) error {
	b.ctx.SetRGBA(float64(prim.Color[0]), float64(prim.Color[1]), float64(prim.Color[2]), float64(prim.Color[3]))
	if s.Style.Fill {
		b.replay(s.Path)
		if err := b.ctx.Fill(); err != nil {
			return err
		}
	}
	if s.Style.Stroke && s.Style.StrokeWidth > 0 {
		b.ctx.SetLineWidth(s.Style.StrokeWidth)
		b.ctx.SetLineCap(s.Style.LineCap)
		b.replay(s.Path)
		if err := b.ctx.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// replay issues path's elements on the context so they pick up the current transform.
func (b *softwareRendererBackendImpl) replay(path *gg.Path) {
	b.ctx.ClearPath()
	path.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			b.ctx.MoveTo(c[0], c[1])
		case gg.LineTo:
			b.ctx.LineTo(c[0], c[1])
		case gg.QuadTo:
			b.ctx.QuadraticTo(c[0], c[1], c[2], c[3])
		case gg.CubicTo:
			b.ctx.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
		case gg.Close:
			b.ctx.ClosePath()
		}
	})
}

func (b *softwareRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.drawn || b.outputDir == "" {
		return nil
	}
	name := filepath.Join(b.outputDir, fmt.Sprintf("frame_%06d.png", b.frames))
	b.frames++
	if err := b.ctx.SavePNG(name); err != nil {
		return fmt.Errorf("renderer: write %s: %w", name, err)
	}
	return nil
}

func (b *softwareRendererBackendImpl) Capture() (image.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx.Image(), nil
}

func (b *softwareRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.ctx.Close()
}
