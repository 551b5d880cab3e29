package common_test

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, common.Clamp(-1.0, 0, 1))
	assert.Equal(t, 1.0, common.Clamp(2.0, 0, 1))
	assert.Equal(t, 0.5, common.Clamp(0.5, 0, 1))
	assert.Equal(t, 3, common.Clamp(7, 1, 3))
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 2.0, common.Lerp(2, 4, 0))
	assert.Equal(t, 4.0, common.Lerp(2, 4, 1))
	assert.Equal(t, 3.0, common.Lerp(2, 4, 0.5))
	assert.Equal(t, 6.0, common.Lerp(2, 4, 2), "t is not clamped")
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", common.Coalesce("", "b", "c"))
	assert.Equal(t, "", common.Coalesce("", ""))
	assert.Equal(t, 3, common.Coalesce(0, 3))
}

func TestCross2(t *testing.T) {
	assert.Equal(t, 1.0, common.Cross2(1, 0, 0, 1))
	assert.Equal(t, -1.0, common.Cross2(0, 1, 1, 0))
	assert.Equal(t, 0.0, common.Cross2(2, 2, 1, 1))
}

func TestNearlyEqual(t *testing.T) {
	assert.True(t, common.NearlyEqual(1, 1.0005, 1e-3))
	assert.False(t, common.NearlyEqual(1, 1.1, 1e-3))
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { common.SetLogger(nil) })

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	common.SetLogger(&l)
	common.Logger().Info().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)

	common.SetLogger(nil)
	buf.Reset()
	common.Logger().Info().Msg("dropped")
	assert.Empty(t, buf.String())
}
