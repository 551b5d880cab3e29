package element

import (
	"slices"

	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
)

type entry[T any] struct {
	property Property
	frame    keyframe.Keyframe[T]
}

// Timeline is the ordered keyframe list owned by a single element.
// For each property at most one keyframe is applied per update. Among the keyframes whose
// window contains t the one registered last wins. When none does, the property holds the
// end value of the keyframe that finished latest, so a clip always settles on its target
// even if no tick lands exactly on its end.
type Timeline[T any] struct {
	entries []entry[T]
}

// Add appends a keyframe bound to property p.
func (tl *Timeline[T]) Add(p Property, kf keyframe.Keyframe[T]) {
	tl.entries = append(tl.entries, entry[T]{property: p, frame: kf})
}

// Update applies, per property, the keyframe selected for t and returns how many applied.
// Properties whose keyframes have not started yet are left untouched.
func (tl *Timeline[T]) Update(target T, t float64) int {
	picks := tl.resolve(t)
	for _, pk := range picks {
		kf := tl.entries[pk.index].frame
		if pk.active {
			kf.Apply(target, t)
		} else {
			kf.Settle(target)
		}
	}
	return len(picks)
}

// ValueAt returns the value the timeline assigns to p at t, or false if no keyframe
// for p has started by then.
func (tl *Timeline[T]) ValueAt(p Property, t float64) (float64, bool) {
	for _, pk := range tl.resolve(t) {
		if pk.property != p {
			continue
		}
		kf := tl.entries[pk.index].frame
		if pk.active {
			return kf.Value(t), true
		}
		return kf.To(), true
	}
	return 0, false
}

type pick struct {
	property Property
	index    int
	active   bool
}

// resolve selects one keyframe per property for time t, in first-registration order.
func (tl *Timeline[T]) resolve(t float64) []pick {
	var picks []pick
	for i, e := range tl.entries {
		if !e.frame.Started(t) {
			continue
		}
		active := !e.frame.Ended(t)
		j := slices.IndexFunc(picks, func(pk pick) bool { return pk.property == e.property })
		if j < 0 {
			picks = append(picks, pick{property: e.property, index: i, active: active})
			continue
		}
		cur := picks[j]
		switch {
		case active:
			// later registration wins among running keyframes
			picks[j] = pick{property: e.property, index: i, active: true}
		case !cur.active && e.frame.End() >= tl.entries[cur.index].frame.End():
			picks[j] = pick{property: e.property, index: i}
		}
	}
	return picks
}

// Len returns the number of registered keyframes.
func (tl *Timeline[T]) Len() int {
	return len(tl.entries)
}

// LastTarget returns the To value of the most recently registered keyframe for p.
func (tl *Timeline[T]) LastTarget(p Property) (float64, bool) {
	for i := len(tl.entries) - 1; i >= 0; i-- {
		if tl.entries[i].property == p {
			return tl.entries[i].frame.To(), true
		}
	}
	return 0, false
}

// End returns the latest end time across all keyframes, or zero when empty.
func (tl *Timeline[T]) End() float64 {
	var end float64
	for _, e := range tl.entries {
		end = max(end, e.frame.End())
	}
	return end
}

// Clone returns a Timeline with its own entry slice. Keyframes are immutable and shared by value.
func (tl *Timeline[T]) Clone() Timeline[T] {
	if tl.entries == nil {
		return Timeline[T]{}
	}
	return Timeline[T]{entries: append(make([]entry[T], 0, len(tl.entries)), tl.entries...)}
}
