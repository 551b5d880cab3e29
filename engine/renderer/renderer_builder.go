package renderer

import (
	"github.com/Carmen-Shannon/smoothie/engine/camera"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the WGPU backend.
//
// Parameters:
//   - count: the sample count (defaults to MSAA4x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer forces the WGPU backend onto the adapter's fallback (CPU) device.
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithForceSoftwareRenderer() RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = true
	}
}

// WithPrimitiveCapacity sets the number of primitive slots, which bounds the largest drawable element id.
//
// Parameters:
//   - capacity: the slot count (DefaultPrimitiveCapacity if <= 0)
//
// Returns:
//   - RendererBuilderOption: a function that applies the capacity option to a renderer
func WithPrimitiveCapacity(capacity int) RendererBuilderOption {
	return func(r *renderer) {
		if capacity > 0 {
			r.primitiveCapacity = capacity
		}
	}
}

// WithCamera uses c instead of a default camera.
//
// Parameters:
//   - c: the camera to draw through
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCamera(c camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.camera = c
	}
}

// WithClearColor sets the background color. Defaults to white.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c colorful.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithOutputDir makes the software backend write each presented frame as a PNG into dir.
//
// Parameters:
//   - dir: the output directory, created if missing
//
// Returns:
//   - RendererBuilderOption: a function that applies the output option to a renderer
func WithOutputDir(dir string) RendererBuilderOption {
	return func(r *renderer) {
		r.outputDir = dir
	}
}

// WithResolution sets the target size for the software backend. The WGPU backend uses
// the window size instead.
//
// Parameters:
//   - width, height: the target size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the resolution option to a renderer
func WithResolution(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithLogger overrides the logger inherited from common.Logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(l zerolog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = l.With().Str("component", "renderer").Logger()
	}
}

// WithMeter overrides the meter the renderer's instruments are created from.
//
// Parameters:
//   - m: the meter to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the meter option to a renderer
func WithMeter(m metric.Meter) RendererBuilderOption {
	return func(r *renderer) {
		if m != nil {
			r.meter = m
		}
	}
}
