package keyframe

import (
	"math"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/easing"
)

// Epsilon is the duration (in seconds) at or below which a keyframe is treated as an
// instantaneous jump to its end value. It also scales the slack allowed when a tick time
// is compared with a keyframe's start or end.
const Epsilon = 1e-9

// Setter writes one numeric property of a target. It is bound when the keyframe is created,
// so applying a keyframe never needs to inspect the target's concrete type.
type Setter[T any] func(target T, value float64)

// Keyframe is a scheduled interpolation of one property from a start value to an end value.
// Times are seconds since the start of the timeline. A Keyframe is immutable once created.
type Keyframe[T any] struct {
	setter   Setter[T]
	from     float64
	to       float64
	start    float64
	duration float64
	easing   easing.Kind
}

// New creates a Keyframe bound to setter. Unset options default to a zero-length
// linear jump from 0 to 0 at t = 0.
//
// Parameters:
//   - setter: the property setter this keyframe drives (must not be nil)
//   - options: functional options describing the transition
//
// Returns:
//   - Keyframe[T]: the configured keyframe
func New[T any](setter Setter[T], options ...KeyframeBuilderOption) Keyframe[T] {
	if setter == nil {
		panic("keyframe: New requires a non-nil Setter")
	}
	var c config
	for _, opt := range options {
		opt(&c)
	}
	return Keyframe[T]{
		setter:   setter,
		from:     c.from,
		to:       c.to,
		start:    c.start,
		duration: c.duration,
		easing:   c.easing,
	}
}

// From returns the value at the start of the keyframe.
func (k Keyframe[T]) From() float64 { return k.from }

// To returns the value at the end of the keyframe.
func (k Keyframe[T]) To() float64 { return k.to }

// Start returns the keyframe start in seconds.
func (k Keyframe[T]) Start() float64 { return k.start }

// Duration returns the keyframe length in seconds as configured.
func (k Keyframe[T]) Duration() float64 { return k.duration }

// Easing returns the interpolation curve.
func (k Keyframe[T]) Easing() easing.Kind { return k.easing }

// End returns the time at which the keyframe reaches its end value.
func (k Keyframe[T]) End() float64 { return k.start + max(k.duration, 0) }

// Instantaneous reports whether the keyframe is a step rather than a transition.
func (k Keyframe[T]) Instantaneous() bool { return k.duration <= Epsilon }

// IsActive reports whether the keyframe drives its property at time t.
// The window is closed on both ends: start <= t <= start+duration, with both bounds
// widened by a relative Epsilon so a tick computed as start+duration through a
// different sum still lands inside. An instantaneous keyframe is active only at its start.
//
// Parameters:
//   - t: seconds since the timeline started
//
// Returns:
//   - bool: true if the keyframe should be applied at t
func (k Keyframe[T]) IsActive(t float64) bool {
	return k.Started(t) && !k.Ended(t)
}

// Started reports whether t has reached the keyframe start.
func (k Keyframe[T]) Started(t float64) bool {
	return t >= k.start-tolerance(k.start)
}

// Ended reports whether t is past the keyframe window.
func (k Keyframe[T]) Ended(t float64) bool {
	end := k.End()
	return t > end+tolerance(end)
}

// Progress returns the linear progress through the keyframe at t, clamped to [0, 1].
// Times within a relative Epsilon of either end snap to 0 or 1.
func (k Keyframe[T]) Progress(t float64) float64 {
	if k.Instantaneous() {
		if k.Started(t) {
			return 1
		}
		return 0
	}
	end := k.End()
	if t >= end-tolerance(end) {
		return 1
	}
	if t <= k.start+tolerance(k.start) {
		return 0
	}
	return common.Clamp((t-k.start)/k.duration, 0, 1)
}

// Value returns the interpolated property value at t.
// The endpoints are exact: Value(start) == from and Value(start+duration) == to.
//
// Parameters:
//   - t: seconds since the timeline started
//
// Returns:
//   - float64: the eased value
func (k Keyframe[T]) Value(t float64) float64 {
	p := k.Progress(t)
	switch p {
	case 0:
		return k.from
	case 1:
		return k.to
	}
	return common.Lerp(k.from, k.to, easing.Evaluate(k.easing, p))
}

// Apply writes Value(t) through the bound setter if the keyframe is active at t.
//
// Parameters:
//   - target: the object owning the property
//   - t: seconds since the timeline started
//
// Returns:
//   - bool: true if the setter was called
func (k Keyframe[T]) Apply(target T, t float64) bool {
	if !k.IsActive(t) {
		return false
	}
	k.setter(target, k.Value(t))
	return true
}

// Settle writes the end value through the bound setter.
//
// Parameters:
//   - target: the object owning the property
func (k Keyframe[T]) Settle(target T) {
	k.setter(target, k.to)
}

// tolerance is the slack allowed around a time x when comparing it with a tick.
func tolerance(x float64) float64 {
	return Epsilon * max(1, math.Abs(x))
}
