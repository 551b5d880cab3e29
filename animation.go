package smoothie

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
)

// DefaultDuration is the clip length Animate uses when no Over option is given.
const DefaultDuration = time.Second

// Animation describes one property transition for Play.
type Animation struct {
	Target   element.Element
	Property element.Property

	// From is the start value. When nil the value the already scheduled keyframes give
	// Property at the clip's start time is used, falling back to the element's current value.
	From *float64
	To   float64

	// Duration of the clip. Zero or negative makes an instantaneous step to To.
	Duration time.Duration
	Easing   easing.Kind

	// Start pins the clip to an absolute timeline position and leaves the cursor alone.
	// When nil the clip starts at the cursor.
	Start *time.Duration

	// Parallel starts the clip at the cursor without advancing it, so the next
	// sequenced clip runs alongside this one.
	Parallel bool
}

// AnimationOption configures a single Animate call.
type AnimationOption func(*Animation)

// Over sets the clip duration.
//
// Parameters:
//   - d: the duration (zero or negative for a step)
//
// Returns:
//   - AnimationOption: option function to apply
func Over(d time.Duration) AnimationOption {
	return func(a *Animation) {
		a.Duration = d
	}
}

// Ease sets the easing curve.
//
// Parameters:
//   - kind: the curve (defaults to easing.Linear)
//
// Returns:
//   - AnimationOption: option function to apply
func Ease(kind easing.Kind) AnimationOption {
	return func(a *Animation) {
		a.Easing = kind
	}
}

// At pins the clip to an absolute timeline position. The cursor does not move.
//
// Parameters:
//   - t: the start time
//
// Returns:
//   - AnimationOption: option function to apply
func At(t time.Duration) AnimationOption {
	return func(a *Animation) {
		a.Start = &t
	}
}

// From sets an explicit start value.
//
// Parameters:
//   - v: the start value
//
// Returns:
//   - AnimationOption: option function to apply
func From(v float64) AnimationOption {
	return func(a *Animation) {
		a.From = &v
	}
}

// Parallel starts the clip at the cursor without advancing it.
//
// Returns:
//   - AnimationOption: option function to apply
func Parallel() AnimationOption {
	return func(a *Animation) {
		a.Parallel = true
	}
}

// Animate schedules a transition of property p on target to the value to.
// The clip starts at the cursor and, unless At or Parallel is given, advances it by the
// clip duration so consecutive calls play one after another. The target joins the scene
// if it is not part of it yet.
// Without From the clip starts from the value p has at the clip's start time given the
// clips scheduled so far, so a sequenced clip continues where the previous one ended.
// Panics if target was not created by this Smoothie or if called after Serve.
//
// Parameters:
//   - target: the element to animate
//   - p: the property to animate
//   - to: the end value
//   - options: Over, Ease, At, From, Parallel
//
// Returns:
//   - error: element.ErrUnsupportedProperty (wrapped) if target has no property p
func (s *Smoothie) Animate(target element.Element, p element.Property, to float64, options ...AnimationOption) error {
	a := Animation{
		Target:   target,
		Property: p,
		To:       to,
		Duration: DefaultDuration,
		Easing:   easing.Linear,
	}
	for _, option := range options {
		option(&a)
	}
	return s.schedule(a, "Animate")
}

// Play schedules a transition described by a. It behaves like Animate, except that a
// zero Duration is taken literally as a step.
//
// Parameters:
//   - a: the transition
//
// Returns:
//   - error: element.ErrUnsupportedProperty (wrapped) if the target has no such property
func (s *Smoothie) Play(a Animation) error {
	return s.schedule(a, "Play")
}

func (s *Smoothie) schedule(a Animation, op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustAuthor(op)
	id := s.mustOwn(a.Target, op)

	start := s.cursor
	if a.Start != nil {
		start = max(*a.Start, 0)
	}

	from, ok := startValue(a, start)
	if !ok {
		return fmt.Errorf("smoothie: %s element %d: %w: %s", op, id, element.ErrUnsupportedProperty, a.Property)
	}

	err := a.Target.AddKeyframe(a.Property,
		keyframe.WithFrom(from),
		keyframe.WithTo(a.To),
		keyframe.WithSpan(start, a.Duration),
		keyframe.WithEasing(a.Easing),
	)
	if err != nil {
		return fmt.Errorf("smoothie: %s element %d: %w", op, id, err)
	}

	if !s.scene.Has(id) {
		s.scene.Add(a.Target)
	}
	if a.Start == nil && !a.Parallel {
		s.cursor = start + max(a.Duration, 0)
	}

	s.logger.Debug().
		Uint32("id", id).
		Stringer("property", a.Property).
		Float64("from", from).
		Float64("to", a.To).
		Dur("start", start).
		Dur("duration", a.Duration).
		Stringer("easing", a.Easing).
		Msg("keyframe scheduled")
	return nil
}

// startValue resolves the clip's start value: explicit From, then the value the
// scheduled keyframes give the property at start, then the element's current value.
func startValue(a Animation, start time.Duration) (float64, bool) {
	if a.From != nil {
		return *a.From, true
	}
	if v, ok := a.Target.ValueAt(a.Property, start.Seconds()); ok {
		return v, true
	}
	return a.Target.Property(a.Property)
}
