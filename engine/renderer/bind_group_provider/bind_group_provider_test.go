package bind_group_provider_test

import (
	"testing"

	"github.com/Carmen-Shannon/smoothie/engine/renderer/bind_group_provider"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider_Empty(t *testing.T) {
	p := bind_group_provider.NewBindGroupProvider("primitives", bind_group_provider.WithIndexCount(6))

	assert.Equal(t, "primitives", p.Label())
	assert.Equal(t, 6, p.IndexCount())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Empty(t, p.Buffers())
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
}

func TestRelease_WithoutResources(t *testing.T) {
	p := bind_group_provider.NewBindGroupProvider("empty")
	p.SetIndexCount(12)

	assert.NotPanics(t, p.Release)
	assert.NotPanics(t, p.Release)
	assert.Equal(t, 0, p.IndexCount())
}
