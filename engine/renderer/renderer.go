package renderer

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/camera"
	"github.com/Carmen-Shannon/smoothie/engine/dom"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// SurfaceSource is the window a WGPU renderer presents to. window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	camera     camera.Camera
	primitives *PrimitiveBuffer
	geometry   *geometry.Buffer
	mesh       geometry.Mesh
	meshSeq    uint64
	order      []uint32
	clearColor colorful.Color

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	primitiveCapacity    int
	outputDir            string
	width, height        int

	logger zerolog.Logger

	meter           metric.Meter
	frames          metric.Int64Counter
	capacitySkipped metric.Int64Counter
}

// Renderer draws DOM snapshots. It owns a backend (WGPU into a window, or the software
// rasterizer for headless output), a camera and the primitive buffer. A Renderer belongs
// to the render goroutine; only Camera and its controller are safe to use from elsewhere.
type Renderer interface {
	// Render draws snap and presents it. Element geometry is rebuilt only when the snapshot
	// sequence changes; primitive records are refreshed every call.
	//
	// Parameters:
	//   - snap: the snapshot copied out of the DOM for this frame
	//
	// Returns:
	//   - error: nil when the frame was drawn or the surface was recovered, a wrapped
	//     ErrOutOfMemory when the session should stop, or another wrapped backend error
	Render(snap dom.Snapshot) error

	// Resize updates the camera resolution and reconfigures the backend target.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Camera returns the view used to map world space to the target.
	//
	// Returns:
	//   - camera.Camera: the renderer's camera
	Camera() camera.Camera

	// Primitives returns the primitive buffer filled by the last Render.
	//
	// Returns:
	//   - *PrimitiveBuffer: the buffer
	Primitives() *PrimitiveBuffer

	// Capture returns the last drawn frame.
	//
	// Returns:
	//   - image.Image: the frame
	//   - error: ErrCaptureUnsupported on the WGPU backend
	Capture() (image.Image, error)

	// BackendType reports which backend was created.
	//
	// Returns:
	//   - RendererBackendType: the backend in use
	BackendType() RendererBackendType

	// Close releases the backend. The renderer must not be used afterwards.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the requested backend. The WGPU backend presents to
// surface and panics if surface is nil; the software backend ignores it.
//
// Parameters:
//   - backendType: BackendTypeWGPU or BackendTypeSoftware
//   - surface: the window to present to (nil for the software backend)
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the backend could not be created
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:                &sync.Mutex{},
		backendType:       backendType,
		meshSeq:           ^uint64(0),
		clearColor:        colorful.Color{R: 1, G: 1, B: 1},
		presentMode:       PresentModeVSync,
		msaa:              MSAA4x,
		primitiveCapacity: DefaultPrimitiveCapacity,
		width:             1280,
		height:            720,
		logger:            common.Logger().With().Str("component", "renderer").Logger(),
		meter:             meter(),
	}

	for _, opt := range options {
		opt(r)
	}

	if backendType == BackendTypeWGPU {
		if surface == nil {
			panic("renderer: the WGPU backend requires a non-nil surface")
		}
		r.width, r.height = surface.Width(), surface.Height()
	}

	if r.camera == nil {
		r.camera = camera.NewCamera()
	}
	r.camera.SetResolution(r.width, r.height)
	r.primitives = NewPrimitiveBuffer(r.primitiveCapacity)
	r.geometry = geometry.NewBuffer(r.primitives.Capacity())

	var err error
	r.frames, err = r.meter.Int64Counter(
		"smoothie.renderer.frames",
		metric.WithDescription("Total frames drawn"),
	)
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create frames counter: %v", err))
	}
	r.capacitySkipped, err = r.meter.Int64Counter(
		"smoothie.renderer.capacity.skipped",
		metric.WithDescription("Total frames with elements beyond the primitive capacity"),
	)
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create capacity counter: %v", err))
	}

	switch backendType {
	case BackendTypeSoftware:
		b, err := newSoftwareRendererBackend(r.width, r.height, r.outputDir)
		if err != nil {
			return nil, err
		}
		r.backend = b
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.primitives.Capacity())
		if err != nil {
			return nil, err
		}
		r.backend = b
	}

	r.backend.SetPresentMode(r.presentMode)
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("renderer: configure surface: %w", err)
	}

	r.logger.Debug().
		Stringer("backend", backendType).
		Int("width", r.width).
		Int("height", r.height).
		Int("primitives", r.primitives.Capacity()).
		Msg("renderer ready")
	return r, nil
}

func (r *renderer) Render(snap dom.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.camera.Update()

	if err := r.primitives.Update(snap); err != nil {
		r.capacitySkipped.Add(ctx(), 1)
		r.logger.Warn().Err(err).Uint64("seq", snap.Seq).Msg("elements skipped")
	}

	meshChanged := snap.Seq != r.meshSeq
	if meshChanged {
		r.rebuildGeometry(snap)
		r.meshSeq = snap.Seq
	}

	frame := &Frame{
		Seq:         snap.Seq,
		Time:        snap.Time,
		Geometry:    r.geometry,
		Mesh:        r.mesh,
		MeshChanged: meshChanged,
		Order:       r.order,
		Primitives:  r.primitives,
		Globals:     r.camera.Globals(),
		ClearColor:  r.clearColor,
	}

	if err := r.backend.DrawFrame(frame); err != nil {
		switch {
		case errors.Is(err, ErrSurfaceLost):
			w, h := r.camera.Resolution()
			r.logger.Warn().Err(err).Msg("surface lost, reconfiguring")
			if cfgErr := r.backend.ConfigureSurface(w, h); cfgErr != nil {
				return fmt.Errorf("reconfigure surface: %w", cfgErr)
			}
			// The mesh upload may not have happened; force it on the next frame.
			r.meshSeq = ^uint64(0)
			return nil
		case errors.Is(err, ErrOutOfMemory):
			return err
		default:
			return fmt.Errorf("draw frame %d: %w", snap.Seq, err)
		}
	}

	if err := r.backend.Present(); err != nil {
		return fmt.Errorf("present frame %d: %w", snap.Seq, err)
	}
	r.frames.Add(ctx(), 1)
	return nil
}

// rebuildGeometry renders every element that fits the primitive buffer into the geometry
// buffer back to front (z-index, then id) and tessellates the result. Callers must hold the mutex.
func (r *renderer) rebuildGeometry(snap dom.Snapshot) {
	r.order = r.order[:0]
	for id := range snap.Elements {
		if int(id) < r.primitives.Capacity() {
			r.order = append(r.order, id)
		}
	}
	slices.SortFunc(r.order, func(a, b uint32) int {
		return cmp.Or(
			cmp.Compare(snap.Elements[a].ZIndex(), snap.Elements[b].ZIndex()),
			cmp.Compare(a, b),
		)
	})

	r.geometry.Reset()
	for _, id := range r.order {
		renderElement(snap.Elements[id], r.geometry, id, r.logger)
	}
	r.mesh = geometry.Tessellate(r.geometry)
}

// renderElement calls el.Render, turning a panic into a log entry so one broken element
// does not take down the render goroutine.
func renderElement(el element.Element, into *geometry.Buffer, id uint32, logger zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Uint32("id", id).Interface("panic", rec).Msg("element render panicked")
		}
	}()
	el.Render(into, id)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.camera.SetResolution(width, height)
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Error().Err(err).Int("width", width).Int("height", height).Msg("resize failed")
	}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Camera() camera.Camera {
	return r.camera
}

func (r *renderer) Primitives() *PrimitiveBuffer {
	return r.primitives
}

func (r *renderer) Capture() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Capture()
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
