package scene

import (
	"time"

	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithTickRate sets how many times per second Run ticks the scene.
//
// Parameters:
//   - fps: ticks per second (defaults to 60 if <= 0)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTickRate(fps float64) SceneBuilderOption {
	return func(s *scene) {
		if fps <= 0 {
			fps = 60
		}
		s.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithElements adds initial elements to the scene.
// Elements without IDs will be assigned new IDs.
//
// Parameters:
//   - elements: the elements to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithElements(elements ...element.Element) SceneBuilderOption {
	return func(s *scene) {
		for _, el := range elements {
			if el != nil {
				s.add(el)
			}
		}
	}
}

// WithWorkers sets the number of worker goroutines used for parallel element updates.
// Defaults to runtime.NumCPU()-1. A value of 1 keeps every update on the ticking goroutine.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = max(n, 1)
	}
}

// WithParallelThreshold sets the element count at which updates are spread across workers.
//
// Parameters:
//   - n: the minimum element count for parallel updates
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithParallelThreshold(n int) SceneBuilderOption {
	return func(s *scene) {
		s.parallelThreshold = max(n, 1)
	}
}

// WithDuration fixes the timeline length used by headless rendering.
//
// Parameters:
//   - seconds: the timeline length
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDuration(seconds float64) SceneBuilderOption {
	return func(s *scene) {
		s.duration = max(seconds, 0)
	}
}

// WithLogger replaces the scene's logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(l zerolog.Logger) SceneBuilderOption {
	return func(s *scene) {
		s.logger = l
	}
}

// WithMeter replaces the OpenTelemetry meter the scene's instruments are created from.
//
// Parameters:
//   - m: the meter to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeter(m metric.Meter) SceneBuilderOption {
	return func(s *scene) {
		if m != nil {
			s.meter = m
		}
	}
}
