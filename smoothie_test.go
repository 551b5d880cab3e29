package smoothie_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/smoothie"
	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valueAt steps the scene to t and reads property p of element id from the published snapshot.
func valueAt(t *testing.T, s *smoothie.Smoothie, id uint32, p element.Property, at float64) float64 {
	t.Helper()
	require.NoError(t, s.Scene().Step(at))
	el, ok := s.Scene().DOM().Snapshot().Elements[id]
	require.True(t, ok, "element %d not published", id)
	v, ok := el.Property(p)
	require.True(t, ok)
	return v
}

func TestElements_MonotonicIDs(t *testing.T) {
	s := smoothie.New()

	a := s.Arrow(element.WithID(99))
	c := s.Circle(0.5)
	r := s.Rectangle(1, 2)
	custom := element.NewArrow()
	id := s.Add(custom)

	assert.Equal(t, uint32(1), a.ID())
	assert.Equal(t, uint32(2), c.ID())
	assert.Equal(t, uint32(3), r.ID())
	assert.Equal(t, uint32(4), id)
	assert.Equal(t, uint32(4), custom.ID())

	// Created elements join the scene when animated; Add registers immediately.
	assert.False(t, s.Scene().Has(a.ID()))
	assert.True(t, s.Scene().Has(id))
	assert.Equal(t, id, s.Add(custom), "adding twice keeps the id")
	assert.Equal(t, uint32(5), s.Add(s.Circle(1)), "Add of an owned element registers it under its id")
}

func TestAnimate_ScenarioA(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow(element.WithScale(0.2))

	require.NoError(t, s.Animate(a, element.Scale, 0.8, smoothie.Over(2*time.Second)))
	assert.True(t, s.Scene().Has(a.ID()))
	assert.InDelta(t, 0.5, valueAt(t, s, a.ID(), element.Scale, 1), 1e-9)
	assert.InDelta(t, 0.8, valueAt(t, s, a.ID(), element.Scale, 2), 1e-9)
}

func TestAnimate_CursorSequencing(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()

	require.NoError(t, s.Animate(a, element.X, 1, smoothie.Over(time.Second)))
	assert.Equal(t, time.Second, s.Cursor())
	require.NoError(t, s.Animate(a, element.X, 3, smoothie.Over(time.Second)))
	assert.Equal(t, 2*time.Second, s.Cursor())

	// The second clip starts from the first one's target, so t=1 agrees on both sides.
	assert.InDelta(t, 0.5, valueAt(t, s, a.ID(), element.X, 0.5), 1e-9)
	assert.InDelta(t, 1.0, valueAt(t, s, a.ID(), element.X, 1), 1e-9)
	assert.InDelta(t, 2.0, valueAt(t, s, a.ID(), element.X, 1.5), 1e-9)
	assert.InDelta(t, 3.0, valueAt(t, s, a.ID(), element.X, 5), 1e-9)
}

func TestAnimate_DefaultsAndEasing(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()

	require.NoError(t, s.Animate(a, element.Y, 1, smoothie.Ease(easing.InQuad)))
	assert.Equal(t, smoothie.DefaultDuration, s.Cursor())
	assert.InDelta(t, 0.25, valueAt(t, s, a.ID(), element.Y, 0.5), 1e-9)
}

func TestAnimate_AtAndParallelKeepCursor(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()
	b := s.Circle(0.5)

	require.NoError(t, s.Animate(a, element.Angle, 1, smoothie.Over(time.Second)))
	require.NoError(t, s.Animate(b, element.Radius, 1, smoothie.Over(time.Second), smoothie.Parallel()))
	assert.Equal(t, time.Second, s.Cursor())

	require.NoError(t, s.Animate(b, element.Opacity, 0, smoothie.At(5*time.Second), smoothie.Over(time.Second)))
	assert.Equal(t, time.Second, s.Cursor())

	assert.InDelta(t, 0.75, valueAt(t, s, b.ID(), element.Radius, 0.5), 1e-9)
	assert.InDelta(t, 1.0, valueAt(t, s, b.ID(), element.Opacity, 4), 1e-9)
	assert.InDelta(t, 0.5, valueAt(t, s, b.ID(), element.Opacity, 5.5), 1e-9)
	assert.InDelta(t, 6.0, s.Scene().Duration(), 1e-9)
}

func TestAnimate_FromOverridesStartValue(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow(element.WithPosition(10, 0))

	require.NoError(t, s.Animate(a, element.X, 2, smoothie.From(-2), smoothie.Over(time.Second)))
	assert.InDelta(t, 0.0, valueAt(t, s, a.ID(), element.X, 0.5), 1e-9)
}

func TestAnimate_OverlapLastRegisteredWins(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()

	require.NoError(t, s.Animate(a, element.X, 1, smoothie.At(0), smoothie.Over(2*time.Second)))
	require.NoError(t, s.Animate(a, element.X, 5, smoothie.At(0), smoothie.From(0), smoothie.Over(2*time.Second)))
	assert.InDelta(t, 2.5, valueAt(t, s, a.ID(), element.X, 1), 1e-9)
}

func TestAnimate_ZeroDurationIsStep(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()

	require.NoError(t, s.Animate(a, element.Opacity, 0.25, smoothie.At(time.Second), smoothie.Over(0)))
	assert.InDelta(t, 1.0, valueAt(t, s, a.ID(), element.Opacity, 0.5), 1e-9)
	assert.InDelta(t, 0.25, valueAt(t, s, a.ID(), element.Opacity, 1), 1e-9)
	assert.InDelta(t, 0.25, valueAt(t, s, a.ID(), element.Opacity, 3), 1e-9)
}

func TestAnimate_StepThenClip(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()

	require.NoError(t, s.Animate(a, element.Scale, 0.5, smoothie.At(time.Second), smoothie.Over(0)))
	require.NoError(t, s.Animate(a, element.Scale, 3, smoothie.At(time.Second), smoothie.Over(time.Second)))

	assert.InDelta(t, 1.75, valueAt(t, s, a.ID(), element.Scale, 1.5), 1e-9)
	assert.InDelta(t, 3.0, valueAt(t, s, a.ID(), element.Scale, 2.5), 1e-9)
	assert.InDelta(t, 3.0, valueAt(t, s, a.ID(), element.Scale, 5), 1e-9)
}

func TestAnimate_ReachesTargetWithUnevenTicks(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow(element.WithScale(0.2))
	require.NoError(t, s.Animate(a, element.Scale, 0.8, smoothie.Over(2*time.Second)))

	var last float64
	for tick := 0.0; tick <= 3; tick += 0.0173 {
		last = valueAt(t, s, a.ID(), element.Scale, tick)
	}
	assert.Equal(t, 0.8, last)
}

func TestAnimate_StartValueFollowsTimelinePosition(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow(element.WithPosition(1, 0))

	require.NoError(t, s.Animate(a, element.X, 5, smoothie.At(2*time.Second), smoothie.Over(time.Second)))
	require.NoError(t, s.Animate(a, element.X, 3, smoothie.Over(time.Second)))

	// the cursor clip at [0, 1] starts from the current value, not from the later clip's target
	assert.InDelta(t, 1.0, valueAt(t, s, a.ID(), element.X, 0), 1e-9)
	assert.InDelta(t, 2.0, valueAt(t, s, a.ID(), element.X, 0.5), 1e-9)
	assert.InDelta(t, 3.0, valueAt(t, s, a.ID(), element.X, 1.5), 1e-9)

	// the pinned clip was scheduled first, so it still starts from the element's value
	assert.InDelta(t, 3.0, valueAt(t, s, a.ID(), element.X, 2.5), 1e-9)
	assert.InDelta(t, 5.0, valueAt(t, s, a.ID(), element.X, 4), 1e-9)
}

func TestAnimate_Errors(t *testing.T) {
	s := smoothie.New()
	a := s.Arrow()

	err := s.Animate(a, element.Radius, 1)
	assert.ErrorIs(t, err, element.ErrUnsupportedProperty)
	assert.Zero(t, s.Cursor(), "a failed call leaves the cursor alone")

	assert.PanicsWithValue(t, "smoothie: Animate target 0 was not created by this Smoothie", func() {
		_ = s.Animate(element.NewArrow(), element.X, 1)
	})
	assert.PanicsWithValue(t, "smoothie: Animate requires a non-nil element", func() {
		_ = s.Animate(nil, element.X, 1)
	})

	other := smoothie.New().Arrow()
	assert.Panics(t, func() { _ = s.Animate(other, element.X, 1) })
}

func TestPlay(t *testing.T) {
	s := smoothie.New()
	c := s.Circle(1)
	from := 2.0
	start := 500 * time.Millisecond

	require.NoError(t, s.Play(smoothie.Animation{
		Target:   c,
		Property: element.Radius,
		From:     &from,
		To:       4,
		Duration: time.Second,
		Start:    &start,
	}))
	assert.Zero(t, s.Cursor())
	assert.InDelta(t, 3.0, valueAt(t, s, c.ID(), element.Radius, 1), 1e-9)

	require.NoError(t, s.Play(smoothie.Animation{Target: c, Property: element.Radius, To: 1}))
	assert.Zero(t, s.Cursor(), "zero duration does not advance the cursor")
}

func TestCursor_WaitAndSet(t *testing.T) {
	s := smoothie.New()
	s.Wait(time.Second)
	assert.Equal(t, time.Second, s.Cursor())
	s.Wait(-5 * time.Second)
	assert.Zero(t, s.Cursor())
	s.SetCursor(3 * time.Second)
	assert.Equal(t, 3*time.Second, s.Cursor())
	s.SetCursor(-time.Second)
	assert.Zero(t, s.Cursor())

	a := s.Arrow()
	s.Wait(2 * time.Second)
	require.NoError(t, s.Animate(a, element.X, 1, smoothie.Over(time.Second)))
	assert.InDelta(t, 0.0, valueAt(t, s, a.ID(), element.X, 1.5), 1e-9)
	assert.InDelta(t, 0.5, valueAt(t, s, a.ID(), element.X, 2.5), 1e-9)
}

func TestServe_Headless(t *testing.T) {
	dir := t.TempDir()
	s := smoothie.New(
		smoothie.WithHeadless(dir),
		smoothie.WithWindowSize(32, 24),
		smoothie.WithTickRate(200),
		smoothie.WithWorkers(1),
	)
	assert.Zero(t, s.TimeSinceStart())

	c := s.Circle(0.5)
	require.NoError(t, s.Animate(c, element.X, 0.5, smoothie.Over(50*time.Millisecond)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Serve(ctx))
	require.NoError(t, ctx.Err())

	assert.GreaterOrEqual(t, s.TimeSinceStart(), 50*time.Millisecond)
	files, err := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
	info, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.PanicsWithValue(t, "smoothie: Animate called after Serve", func() {
		_ = s.Animate(c, element.X, 1)
	})
	assert.Panics(t, func() { s.Arrow() })
	assert.Panics(t, func() { s.Wait(time.Second) })
	assert.PanicsWithValue(t, "smoothie: Serve called after Serve", func() {
		_ = s.Serve(context.Background())
	})
}
