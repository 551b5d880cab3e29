package renderer

import (
	"errors"
	"image"
	"strings"

	"github.com/Carmen-Shannon/smoothie/engine/camera"
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrSurfaceLost is returned when the swapchain texture cannot be acquired.
	// The renderer reconfigures the surface and continues with the next frame.
	ErrSurfaceLost = errors.New("renderer: surface lost")

	// ErrOutOfMemory is returned when the backend cannot allocate frame resources.
	// The session treats it as fatal.
	ErrOutOfMemory = errors.New("renderer: out of memory")

	// ErrPrimitiveCapacity reports element ids that do not fit in the primitive buffer.
	// Those elements are not drawn.
	ErrPrimitiveCapacity = errors.New("renderer: element id exceeds primitive capacity")

	// ErrCaptureUnsupported is returned by Capture on backends that present to a window.
	ErrCaptureUnsupported = errors.New("renderer: capture not supported by backend")
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU backend drawing into a window surface.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeSoftware selects the CPU rasterizer, used for headless output.
	BackendTypeSoftware
)

// String returns the lowercase backend name.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a config value ("vsync" or "uncapped") to a PresentMode.
// Unknown values fall back to VSync.
func ParsePresentMode(s string) PresentMode {
	if strings.EqualFold(strings.TrimSpace(s), "uncapped") {
		return PresentModeUncapped
	}
	return PresentModeVSync
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8x multisample anti-aliasing. Adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16x multisample anti-aliasing. Adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// ParseMSAA maps a sample count to an MSAASampleCount. Unsupported counts fall back to MSAA4x.
func ParseMSAA(n int) MSAASampleCount {
	switch MSAASampleCount(n) {
	case MSAAOff, MSAA4x, MSAA8x, MSAA16x:
		return MSAASampleCount(n)
	default:
		return MSAA4x
	}
}

// Frame is everything a backend needs to draw one snapshot.
type Frame struct {
	// Seq and Time identify the snapshot the frame was built from.
	Seq  uint64
	Time float64

	// Geometry holds the element outlines in local space, tagged by id.
	Geometry *geometry.Buffer
	// Mesh is the tessellated Geometry. Only rebuilt when the snapshot changes.
	Mesh geometry.Mesh
	// MeshChanged is true when Mesh differs from the previous frame's.
	MeshChanged bool

	// Order lists the drawable element ids back to front.
	Order []uint32

	Primitives *PrimitiveBuffer
	Globals    camera.Globals
	ClearColor colorful.Color
}

// RendererBackend is the contract every backend implements. Calls are made from the
// render goroutine only.
type RendererBackend interface {
	// ConfigureSurface resizes the render target.
	//
	// Parameters:
	//   - width, height: the target size in pixels
	//
	// Returns:
	//   - error: an error if the target could not be (re)created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets how frames are delivered to the display. Takes effect on the
	// next ConfigureSurface. Ignored by backends without a display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// DrawFrame records and submits the draw commands for one frame.
	//
	// Parameters:
	//   - f: the frame to draw
	//
	// Returns:
	//   - error: ErrSurfaceLost, ErrOutOfMemory or a wrapped backend error
	DrawFrame(f *Frame) error

	// Present displays (or writes out) the last drawn frame.
	//
	// Returns:
	//   - error: an error if the frame could not be presented
	Present() error

	// Capture returns a copy of the last drawn frame.
	//
	// Returns:
	//   - image.Image: the frame contents
	//   - error: ErrCaptureUnsupported on window backends
	Capture() (image.Image, error)

	// Release frees every resource owned by the backend.
	Release()
}
