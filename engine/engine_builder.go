package engine

import (
	"github.com/Carmen-Shannon/smoothie/engine/profiler"
	"github.com/Carmen-Shannon/smoothie/engine/stream"
	"github.com/Carmen-Shannon/smoothie/engine/window"
	"github.com/rs/zerolog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default once-per-second profiler.
//
// Parameters:
//   - p: the profiler ticked once per rendered frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow attaches a window. Run then pumps its messages on the calling goroutine
// and the session ends when the window closes.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithFrameSink publishes every rendered frame's primitive buffer to sink.
//
// Parameters:
//   - sink: the frame sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSink(sink stream.Sink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = sink
	}
}

// WithStopAtEnd ends the session once a snapshot at or past the timeline end has been rendered.
//
// Parameters:
//   - enabled: if true, the session stops at the end of the timeline
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStopAtEnd(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.stopAtEnd = enabled
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithLogger overrides the component logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l zerolog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = l
	}
}
