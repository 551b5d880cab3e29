// Package easing maps linear animation progress onto eased progress.
package easing

import (
	"fmt"
	"strings"

	"github.com/fogleman/ease"
)

// Kind identifies an easing curve.
type Kind int

const (
	// Linear returns progress unchanged.
	Linear Kind = iota
	// EaseInOut is the general purpose symmetric curve (quadratic in-out).
	EaseInOut
	InQuad
	OutQuad
	InOutQuad
	InCubic
	OutCubic
	InOutCubic
	InSine
	OutSine
	InOutSine
	InExpo
	OutExpo
	InOutExpo
	InBack
	OutBack
	InOutBack
	InElastic
	OutElastic
	InBounce
	OutBounce
	InOutBounce
)

var curves = map[Kind]func(float64) float64{
	Linear:      ease.Linear,
	EaseInOut:   ease.InOutQuad,
	InQuad:      ease.InQuad,
	OutQuad:     ease.OutQuad,
	InOutQuad:   ease.InOutQuad,
	InCubic:     ease.InCubic,
	OutCubic:    ease.OutCubic,
	InOutCubic:  ease.InOutCubic,
	InSine:      ease.InSine,
	OutSine:     ease.OutSine,
	InOutSine:   ease.InOutSine,
	InExpo:      ease.InExpo,
	OutExpo:     ease.OutExpo,
	InOutExpo:   ease.InOutExpo,
	InBack:      ease.InBack,
	OutBack:     ease.OutBack,
	InOutBack:   ease.InOutBack,
	InElastic:   ease.InElastic,
	OutElastic:  ease.OutElastic,
	InBounce:    ease.InBounce,
	OutBounce:   ease.OutBounce,
	InOutBounce: ease.InOutBounce,
}

var names = map[Kind]string{
	Linear:      "linear",
	EaseInOut:   "ease-in-out",
	InQuad:      "in-quad",
	OutQuad:     "out-quad",
	InOutQuad:   "in-out-quad",
	InCubic:     "in-cubic",
	OutCubic:    "out-cubic",
	InOutCubic:  "in-out-cubic",
	InSine:      "in-sine",
	OutSine:     "out-sine",
	InOutSine:   "in-out-sine",
	InExpo:      "in-expo",
	OutExpo:     "out-expo",
	InOutExpo:   "in-out-expo",
	InBack:      "in-back",
	OutBack:     "out-back",
	InOutBack:   "in-out-back",
	InElastic:   "in-elastic",
	OutElastic:  "out-elastic",
	InBounce:    "in-bounce",
	OutBounce:   "out-bounce",
	InOutBounce: "in-out-bounce",
}

// Evaluate maps linear progress to eased progress for the given curve.
// Progress outside [0, 1] is clamped. The endpoints are fixed for every kind:
// Evaluate(k, 0) == 0 and Evaluate(k, 1) == 1. Unknown kinds evaluate as Linear.
//
// Parameters:
//   - kind: the easing curve
//   - progress: linear progress, nominally in [0, 1]
//
// Returns:
//   - float64: eased progress
func Evaluate(kind Kind, progress float64) float64 {
	if progress <= 0 {
		return 0
	}
	if progress >= 1 {
		return 1
	}
	curve, ok := curves[kind]
	if !ok {
		return progress
	}
	return curve(progress)
}

// Kinds returns every known easing kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(curves))
	for k := Linear; k <= InOutBounce; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("easing(%d)", int(k))
}

// Parse resolves a curve name such as "linear" or "in-out-cubic".
// Matching ignores case and accepts underscores in place of dashes.
//
// Parameters:
//   - name: the curve name
//
// Returns:
//   - Kind: the matching kind
//   - error: an error if no curve has that name
func Parse(name string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for k, n := range names {
		if n == normalized {
			return k, nil
		}
	}
	return Linear, fmt.Errorf("unknown easing %q", name)
}
