package element

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedProperty is returned when a keyframe targets a property the element type does not have.
var ErrUnsupportedProperty = errors.New("element: unsupported property")

// Property addresses a single animatable numeric property of an Element.
type Property int

const (
	X Property = iota
	Y
	Scale
	Angle
	Opacity
	ColorMix
	ZIndex
	StrokeWidth
	Width
	Height
	Radius
)

var propertyNames = map[Property]string{
	X:           "x",
	Y:           "y",
	Scale:       "scale",
	Angle:       "angle",
	Opacity:     "opacity",
	ColorMix:    "color-mix",
	ZIndex:      "z-index",
	StrokeWidth: "stroke-width",
	Width:       "width",
	Height:      "height",
	Radius:      "radius",
}

func (p Property) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// ParseProperty resolves a property name such as "scale" or "color_mix".
//
// Parameters:
//   - name: the property name, case-insensitive, with '-' or '_' separators
//
// Returns:
//   - Property: the matching property
//   - error: ErrUnsupportedProperty wrapped with the name if nothing matches
func ParseProperty(name string) (Property, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for p, n := range propertyNames {
		if n == normalized {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedProperty, name)
}
