package scene_test

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/smoothie/engine/dom"
	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/Carmen-Shannon/smoothie/engine/keyframe"
	"github.com/Carmen-Shannon/smoothie/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// faulty panics on update while fail is set.
type faulty struct {
	*element.Arrow
	fail bool
}

func (f *faulty) UpdateWithKeyframes(t float64) {
	if f.fail {
		panic("faulty element")
	}
	f.Arrow.UpdateWithKeyframes(t)
}

func (f *faulty) Clone() element.Element {
	return &faulty{Arrow: f.Arrow.Clone().(*element.Arrow), fail: f.fail}
}

func scaled(t *testing.T, from, to, start, dur float64) *element.Arrow {
	t.Helper()
	a := element.NewArrow()
	require.NoError(t, a.AddKeyframe(element.Scale,
		keyframe.WithFrom(from),
		keyframe.WithTo(to),
		keyframe.WithStart(start),
		keyframe.WithDuration(dur),
		keyframe.WithEasing(easing.Linear),
	))
	return a
}

func TestNewScene_NilDOMPanics(t *testing.T) {
	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil DOM", func() {
		scene.NewScene(nil)
	})
}

func TestAdd_AssignsIDs(t *testing.T) {
	s := scene.NewScene(dom.NewDOM(), scene.WithMeter(noop.NewMeterProvider().Meter("test")))

	first := s.Add(element.NewArrow())
	second := s.Add(element.NewCircle(1, element.WithID(10)))
	third := s.Add(element.NewRectangle(1, 1))

	assert.Equal(t, uint32(1), first)
	assert.Equal(t, uint32(10), second)
	assert.Equal(t, uint32(11), third)
	assert.Equal(t, []uint32{1, 10, 11}, s.IDs())
	assert.Equal(t, 3, s.Count())
	assert.True(t, s.Has(10))
	assert.Nil(t, s.Get(2))
	assert.Panics(t, func() { s.MustGet(2) })
	assert.Panics(t, func() { s.Add(nil) })
}

func TestStart_IdleToRunningOnce(t *testing.T) {
	s := scene.NewScene(dom.NewDOM())
	assert.Equal(t, scene.StateIdle, s.State())
	assert.Zero(t, s.TimeSinceStart())

	s.Start()
	require.Equal(t, scene.StateRunning, s.State())
	time.Sleep(5 * time.Millisecond)
	before := s.TimeSinceStart()
	s.Start()
	assert.GreaterOrEqual(t, s.TimeSinceStart(), before)
	assert.Greater(t, before, time.Duration(0))
}

func TestStep_PublishesAdvancedClones(t *testing.T) {
	d := dom.NewDOM()
	a := scaled(t, 0.2, 0.8, 0, 2)
	s := scene.NewScene(d, scene.WithElements(a))

	require.NoError(t, s.Step(1.0))

	snap := d.Snapshot()
	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, 1.0, snap.Time)
	require.Contains(t, snap.Elements, a.ID())
	assert.InDelta(t, 0.5, snap.Elements[a.ID()].Scale(), 1e-12)

	// the published element is a clone, later ticks do not reach it
	require.NoError(t, s.Step(2.0))
	assert.InDelta(t, 0.5, snap.Elements[a.ID()].Scale(), 1e-12)
	assert.InDelta(t, 0.8, a.Scale(), 1e-12)
}

func TestStep_ParallelMatchesSequential(t *testing.T) {
	const n = 40
	seqDOM, parDOM := dom.NewDOM(), dom.NewDOM()
	seq := scene.NewScene(seqDOM, scene.WithWorkers(1))
	par := scene.NewScene(parDOM, scene.WithWorkers(4), scene.WithParallelThreshold(2))
	for i := range n {
		start := float64(i) / n
		seq.Add(scaled(t, 0, 1, start, 1))
		par.Add(scaled(t, 0, 1, start, 1))
	}

	require.NoError(t, seq.Step(0.75))
	require.NoError(t, par.Step(0.75))

	want, got := seqDOM.Snapshot(), parDOM.Snapshot()
	require.Equal(t, n, got.Len())
	for id, el := range want.Elements {
		assert.Equal(t, el.Scale(), got.Elements[id].Scale(), "element %d", id)
	}
}

func TestStep_PanicSkipsPublish(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		d := dom.NewDOM()
		bad := &faulty{Arrow: element.NewArrow(), fail: true}
		opts := []scene.SceneBuilderOption{scene.WithElements(bad, element.NewCircle(1))}
		if parallel {
			opts = append(opts, scene.WithWorkers(2), scene.WithParallelThreshold(1))
		}
		s := scene.NewScene(d, opts...)

		err := s.Step(0.5)
		require.ErrorIs(t, err, scene.ErrPublishSkipped)
		assert.Equal(t, uint64(0), d.Sequence())

		bad.fail = false
		require.NoError(t, s.Step(0.5))
		assert.Equal(t, uint64(1), d.Sequence())
	}
}

func TestStep_ClosedDOM(t *testing.T) {
	d := dom.NewDOM()
	s := scene.NewScene(d, scene.WithElements(element.NewArrow()))
	d.Close()

	err := s.Step(0)
	assert.ErrorIs(t, err, scene.ErrPublishSkipped)
	assert.ErrorIs(t, err, dom.ErrClosed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	d := dom.NewDOM()
	s := scene.NewScene(d, scene.WithTickRate(500), scene.WithElements(scaled(t, 0, 1, 0, 10)))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, scene.StateRunning, s.State())
	assert.Greater(t, d.Sequence(), uint64(1))
}

func TestRun_StopsWhenDOMClosed(t *testing.T) {
	d := dom.NewDOM()
	s := scene.NewScene(d, scene.WithTickRate(1000))

	go func() {
		time.Sleep(20 * time.Millisecond)
		d.Close()
	}()

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, dom.ErrClosed)
}

func TestSetTickRate_WhileRunning(t *testing.T) {
	d := dom.NewDOM()
	s := scene.NewScene(d, scene.WithTickRate(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Sequence() >= 1 }, time.Second, time.Millisecond)
	s.SetTickRate(1000)
	require.Eventually(t, func() bool { return d.Sequence() >= 10 }, 2*time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestDuration(t *testing.T) {
	s := scene.NewScene(dom.NewDOM(), scene.WithElements(scaled(t, 0, 1, 1, 2), scaled(t, 0, 1, 0, 1)))
	assert.Equal(t, 3.0, s.Duration())

	fixed := scene.NewScene(dom.NewDOM(), scene.WithDuration(7))
	assert.Equal(t, 7.0, fixed.Duration())
}
