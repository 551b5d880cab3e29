// Package element defines the drawable, animatable elements of a scene.
package element

import (
	"github.com/Carmen-Shannon/smoothie/engine/geometry"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/lucasb-eyer/go-colorful"
)

// Element is a drawable entity that owns its keyframes and is the only thing that
// mutates its own property values. Elements are touched by one goroutine at a time;
// the renderer only ever sees clones.
type Element interface {
	// ID returns the element's unique identifier.
	//
	// Returns:
	//   - uint32: the element ID
	ID() uint32

	// SetID sets the element's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint32)

	// Render appends the element's outline, in local space within [-1, 1], to the buffer.
	// It does not modify the element.
	//
	// Parameters:
	//   - into: the buffer to append to
	//   - id: the tag the shapes are recorded under
	Render(into *geometry.Buffer, id uint32)

	// UpdateWithKeyframes applies, per property, the keyframe selected for t: the last
	// registered among those running at t, otherwise the end value of the latest finished
	// one. Properties with no started keyframe keep their value.
	//
	// Parameters:
	//   - t: seconds since the timeline started
	UpdateWithKeyframes(t float64)

	// Property returns the current value of p.
	//
	// Returns:
	//   - float64: the value
	//   - bool: false if the element has no such property
	Property(p Property) (float64, bool)

	// SetProperty assigns v to p.
	//
	// Returns:
	//   - bool: false if the element has no such property
	SetProperty(p Property, v float64) bool

	// AddKeyframe registers a keyframe for p bound to the element's setter for that property.
	//
	// Parameters:
	//   - p: the property to animate
	//   - options: keyframe options (from, to, start, duration, easing)
	//
	// Returns:
	//   - error: ErrUnsupportedProperty if the element has no such property
	AddKeyframe(p Property, options ...keyframe.KeyframeBuilderOption) error

	// Keyframes returns the number of registered keyframes.
	Keyframes() int

	// LastTarget returns the end value of the last keyframe registered for p.
	LastTarget(p Property) (float64, bool)

	// ValueAt returns the value the keyframes assign to p at t without touching the element.
	//
	// Returns:
	//   - float64: the value
	//   - bool: false if no keyframe for p has started by t
	ValueAt(p Property, t float64) (float64, bool)

	// TimelineEnd returns the latest keyframe end time in seconds.
	TimelineEnd() float64

	// Clone returns a deep copy sharing no mutable state with the receiver.
	Clone() Element

	Position() (x, y float64)
	Scale() float64
	Angle() float64
	ZIndex() int32
	Opacity() float64
	Color() colorful.Color
}
