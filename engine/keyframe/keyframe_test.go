package keyframe

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/stretchr/testify/assert"
)

type box struct {
	value float64
	calls int
}

func setValue(b *box, v float64) {
	b.value = v
	b.calls++
}

func TestIsActive_ClosedInterval(t *testing.T) {
	k := New(setValue, WithStart(1), WithDuration(2), WithFrom(0), WithTo(1))

	assert.False(t, k.IsActive(0.999999))
	assert.True(t, k.IsActive(1))
	assert.True(t, k.IsActive(2))
	assert.True(t, k.IsActive(3))
	assert.False(t, k.IsActive(3.000001))
}

func TestValue_EndpointsExactForEveryEasing(t *testing.T) {
	for _, kind := range easing.Kinds() {
		k := New(setValue, WithFrom(0.1), WithTo(0.7), WithStart(0.1), WithDuration(0.2), WithEasing(kind))
		assert.Equal(t, 0.1, k.Value(0.1), "start value for %s", kind)
		assert.Equal(t, 0.7, k.Value(0.1+0.2), "end value for %s", kind)
	}
}

func TestApply_LinearMidpoint(t *testing.T) {
	b := &box{}
	k := New(setValue, WithFrom(0.2), WithTo(0.8), WithStart(0), WithDuration(2), WithEasing(easing.Linear))

	assert.True(t, k.Apply(b, 1))
	assert.InDelta(t, 0.5, b.value, 1e-12)
}

func TestApply_InactiveLeavesTargetUntouched(t *testing.T) {
	b := &box{value: 42}
	k := New(setValue, WithFrom(0), WithTo(1), WithStart(5), WithDuration(1))

	assert.False(t, k.Apply(b, 4))
	assert.False(t, k.Apply(b, 6.5))
	assert.Equal(t, 42.0, b.value)
	assert.Zero(t, b.calls)
}

func TestZeroDuration_IsStep(t *testing.T) {
	b := &box{value: 3}
	k := New(setValue, WithFrom(3), WithTo(9), WithStart(2), WithDuration(0))

	assert.True(t, k.Instantaneous())
	assert.False(t, k.Apply(b, 1.5))
	assert.Equal(t, 3.0, b.value)

	assert.True(t, k.Apply(b, 2))
	assert.Equal(t, 9.0, b.value)
	assert.Equal(t, 9.0, k.Value(100))

	// past its instant the step no longer writes; the owning timeline holds the value
	b.value = 4
	assert.False(t, k.Apply(b, 100))
	assert.True(t, k.Ended(100))
	assert.Equal(t, 4.0, b.value)
}

func TestStartedAndEnded(t *testing.T) {
	k := New(setValue, WithStart(0.1), WithDuration(0.2))

	assert.False(t, k.Started(0.05))
	assert.True(t, k.Started(0.1))
	assert.False(t, k.Ended(0.3))
	assert.True(t, k.Ended(0.31))
}

func TestProgress_SnapsNearEndpoints(t *testing.T) {
	k := New(setValue, WithFrom(0.2), WithTo(0.8), WithStart(0.1), WithDuration(0.2))

	// 0.1+0.2 as a float64 sum is 0.30000000000000004, the tick is 0.3
	assert.Equal(t, 1.0, k.Progress(0.3))
	assert.True(t, k.IsActive(0.3))
	assert.Equal(t, 0.8, k.Value(0.3))
	assert.Equal(t, 0.0, k.Progress(0.1-1e-12))
	assert.Equal(t, 0.2, k.Value(0.1-1e-12))
	assert.InDelta(t, 0.5, k.Progress(0.2), 1e-12)
}

func TestSettle_WritesEndValue(t *testing.T) {
	b := &box{}
	k := New(setValue, WithFrom(1), WithTo(5), WithStart(0), WithDuration(1))

	k.Settle(b)
	assert.Equal(t, 5.0, b.value)
	assert.Equal(t, 1, b.calls)
}

func TestNegativeDuration_NormalizedToStep(t *testing.T) {
	k := New(setValue, WithFrom(1), WithTo(2), WithStart(1), WithDuration(-4))

	assert.True(t, k.Instantaneous())
	assert.Equal(t, 1.0, k.End())
	assert.Equal(t, 2.0, k.Value(1))
}

func TestWithSpan(t *testing.T) {
	k := New(setValue, WithSpan(1500*time.Millisecond, 250*time.Millisecond))

	assert.Equal(t, 1.5, k.Start())
	assert.Equal(t, 0.25, k.Duration())
	assert.Equal(t, 1.75, k.End())
}

func TestApply_Idempotent(t *testing.T) {
	b := &box{}
	k := New(setValue, WithFrom(-1), WithTo(1), WithDuration(3), WithEasing(easing.InOutCubic))

	k.Apply(b, 1.3)
	first := b.value
	k.Apply(b, 1.3)
	assert.Equal(t, first, b.value)
}

func TestNew_NilSetterPanics(t *testing.T) {
	assert.Panics(t, func() {
		New[*box](nil)
	})
}
