package profiler_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/Carmen-Shannon/smoothie/engine/profiler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestProfiler_ReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var out bytes.Buffer
	p := profiler.NewProfiler(
		profiler.WithClock(clock.now),
		profiler.WithInterval(time.Second),
		profiler.WithLogger(zerolog.New(&out)),
	)

	for range 24 {
		clock.t = clock.t.Add(40 * time.Millisecond)
		require.False(t, p.Tick())
	}
	assert.Empty(t, out.String())

	clock.t = clock.t.Add(40 * time.Millisecond)
	require.True(t, p.Tick())

	s := p.Last()
	assert.Equal(t, 25, s.Frames)
	assert.InDelta(t, 25.0, s.FPS, 0.01)
	assert.Greater(t, s.SysMB, 0.0)
	assert.Contains(t, out.String(), `"fps":25`)
	assert.Contains(t, out.String(), `"component":"profiler"`)

	clock.t = clock.t.Add(time.Millisecond)
	assert.False(t, p.Tick(), "counter restarts after a report")
}
