package keyframe

import (
	"time"

	"github.com/Carmen-Shannon/smoothie/engine/easing"
)

// config collects keyframe options independently of the target type so the same
// options can be passed to keyframes bound to any element.
type config struct {
	from     float64
	to       float64
	start    float64
	duration float64
	easing   easing.Kind
}

// KeyframeBuilderOption is a functional option for configuring a Keyframe during construction.
type KeyframeBuilderOption func(*config)

// WithFrom sets the value at the start of the keyframe.
//
// Parameters:
//   - v: the start value
//
// Returns:
//   - KeyframeBuilderOption: option function to apply
func WithFrom(v float64) KeyframeBuilderOption {
	return func(c *config) {
		c.from = v
	}
}

// WithTo sets the value at the end of the keyframe.
//
// Parameters:
//   - v: the end value
//
// Returns:
//   - KeyframeBuilderOption: option function to apply
func WithTo(v float64) KeyframeBuilderOption {
	return func(c *config) {
		c.to = v
	}
}

// WithStart sets the keyframe start in seconds since the timeline started.
//
// Parameters:
//   - seconds: the start offset
//
// Returns:
//   - KeyframeBuilderOption: option function to apply
func WithStart(seconds float64) KeyframeBuilderOption {
	return func(c *config) {
		c.start = seconds
	}
}

// WithDuration sets the keyframe length in seconds. Zero or negative durations
// produce an instantaneous jump to the end value.
//
// Parameters:
//   - seconds: the duration
//
// Returns:
//   - KeyframeBuilderOption: option function to apply
func WithDuration(seconds float64) KeyframeBuilderOption {
	return func(c *config) {
		c.duration = seconds
	}
}

// WithSpan sets start and duration from time.Duration values.
func WithSpan(start, duration time.Duration) KeyframeBuilderOption {
	return func(c *config) {
		c.start = start.Seconds()
		c.duration = duration.Seconds()
	}
}

// WithEasing sets the interpolation curve.
//
// Parameters:
//   - kind: the easing curve (defaults to easing.Linear)
//
// Returns:
//   - KeyframeBuilderOption: option function to apply
func WithEasing(kind easing.Kind) KeyframeBuilderOption {
	return func(c *config) {
		c.easing = kind
	}
}
