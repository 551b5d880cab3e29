package smoothie

import (
	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/renderer"
	"github.com/Carmen-Shannon/smoothie/engine/stream"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
)

// SmoothieBuilderOption is a functional option for configuring a Smoothie.
type SmoothieBuilderOption func(*Smoothie)

// WithTickRate sets how many times per second the scene is evaluated.
//
// Parameters:
//   - fps: ticks per second (defaults to 60 if <= 0)
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithTickRate(fps float64) SmoothieBuilderOption {
	return func(s *Smoothie) {
		if fps <= 0 {
			fps = 60
		}
		s.tickRate = fps
	}
}

// WithRenderFrameLimit caps the render loop.
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.renderFrameLimit = max(fps, 0)
	}
}

// WithHeadless renders with the software renderer instead of opening a window.
// Each new snapshot is written to dir as a numbered PNG (nothing is written when dir is
// empty) and Serve returns once the timeline end has been rendered.
//
// Parameters:
//   - dir: the frame output directory
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithHeadless(dir string) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.headless = true
		s.outputDir = dir
	}
}

// WithWindowSize sets the window size, or the image size when headless.
//
// Parameters:
//   - width, height: size in pixels (ignored if not positive)
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithWindowSize(width, height int) SmoothieBuilderOption {
	return func(s *Smoothie) {
		if width > 0 && height > 0 {
			s.width, s.height = width, height
		}
	}
}

// WithTitle sets the window title. An empty title keeps the default.
func WithTitle(title string) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.title = common.Coalesce(title, s.title)
	}
}

// WithPrimitiveCapacity sets how many element ids the renderer can draw.
// Elements with larger ids are skipped.
//
// Parameters:
//   - capacity: number of primitive slots
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithPrimitiveCapacity(capacity int) SmoothieBuilderOption {
	return func(s *Smoothie) {
		if capacity > 0 {
			s.primitiveCapacity = capacity
		}
	}
}

// WithPresentMode sets the window present mode.
func WithPresentMode(mode renderer.PresentMode) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.presentMode = mode
	}
}

// WithMSAA sets the window's multisample count.
func WithMSAA(count renderer.MSAASampleCount) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.msaa = count
	}
}

// WithProfiling logs frame rate and memory statistics once per second.
func WithProfiling(enabled bool) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.profiling = enabled
	}
}

// WithFrameSink publishes every rendered frame's primitive buffer to sink.
// The caller keeps ownership and closes it after Serve returns.
//
// Parameters:
//   - sink: the frame sink
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithFrameSink(sink stream.Sink) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.sink = sink
	}
}

// WithLogger sets the logger used by the session.
func WithLogger(l zerolog.Logger) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.logger = l
	}
}

// WithWorkers sets the size of the worker pool used for large scenes.
//
// Parameters:
//   - n: number of workers (the scene default is used if <= 0)
//
// Returns:
//   - SmoothieBuilderOption: option function to apply
func WithWorkers(n int) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.workers = n
	}
}

// WithClearColor sets the background color.
func WithClearColor(c colorful.Color) SmoothieBuilderOption {
	return func(s *Smoothie) {
		s.clearColor = c
	}
}
