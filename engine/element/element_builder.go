package element

import (
	"github.com/lucasb-eyer/go-colorful"
)

type config struct {
	base          Base
	fillTargetSet bool
}

// ElementBuilderOption is a functional option for configuring an element during construction.
type ElementBuilderOption func(*config)

// WithID sets the ID of the element.
//
// Parameters:
//   - id: unique identifier for the element
//
// Returns:
//   - ElementBuilderOption: functional option to set the ID
func WithID(id uint32) ElementBuilderOption {
	return func(c *config) {
		c.base.id = id
	}
}

// WithPosition sets the initial translation of the element.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//
// Returns:
//   - ElementBuilderOption: functional option to set the position
func WithPosition(x, y float64) ElementBuilderOption {
	return func(c *config) {
		c.base.x, c.base.y = x, y
	}
}

// WithScale sets the initial uniform scale of the element.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - ElementBuilderOption: functional option to set the scale
func WithScale(s float64) ElementBuilderOption {
	return func(c *config) {
		c.base.scale = s
	}
}

// WithAngle sets the initial rotation of the element in radians.
//
// Parameters:
//   - radians: the rotation angle
//
// Returns:
//   - ElementBuilderOption: functional option to set the angle
func WithAngle(radians float64) ElementBuilderOption {
	return func(c *config) {
		c.base.angle = radians
	}
}

// WithOpacity sets the initial opacity of the element.
//
// Parameters:
//   - o: opacity in [0, 1]
//
// Returns:
//   - ElementBuilderOption: functional option to set the opacity
func WithOpacity(o float64) ElementBuilderOption {
	return func(c *config) {
		c.base.opacity = o
	}
}

// WithZIndex sets the draw order of the element. Higher values draw on top.
//
// Parameters:
//   - z: the z index
//
// Returns:
//   - ElementBuilderOption: functional option to set the z index
func WithZIndex(z int32) ElementBuilderOption {
	return func(c *config) {
		c.base.zIndex = float64(z)
	}
}

// WithStrokeWidth sets the outline width in local units. Zero disables the stroke.
//
// Parameters:
//   - w: the stroke width
//
// Returns:
//   - ElementBuilderOption: functional option to set the stroke width
func WithStrokeWidth(w float64) ElementBuilderOption {
	return func(c *config) {
		c.base.strokeWidth = max(w, 0)
	}
}

// WithFill sets the fill color. Unless WithFillTarget is also given, the fill target matches it.
//
// Parameters:
//   - col: the fill color
//
// Returns:
//   - ElementBuilderOption: functional option to set the fill color
func WithFill(col colorful.Color) ElementBuilderOption {
	return func(c *config) {
		c.base.fill = col
	}
}

// WithFillTarget sets the color that ColorMix blends towards.
//
// Parameters:
//   - col: the target color
//
// Returns:
//   - ElementBuilderOption: functional option to set the fill target
func WithFillTarget(col colorful.Color) ElementBuilderOption {
	return func(c *config) {
		c.base.fillTarget = col
		c.fillTargetSet = true
	}
}

// WithFillHex sets the fill color from a "#rrggbb" string. Invalid strings are ignored.
//
// Parameters:
//   - hex: the color in hex notation
//
// Returns:
//   - ElementBuilderOption: functional option to set the fill color
func WithFillHex(hex string) ElementBuilderOption {
	return func(c *config) {
		if col, err := colorful.Hex(hex); err == nil {
			c.base.fill = col
		}
	}
}
