package main

import (
	"math"
	"time"

	"github.com/Carmen-Shannon/smoothie"
	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/lucasb-eyer/go-colorful"
)

// demoCycles is the number of grow/shrink cycles the arrow runs.
const demoCycles = 6

// demoStep is the length of one half cycle.
const demoStep = time.Second

// buildDemo schedules an arrow that pulses in scale while turning, and a circle that
// crosses the view underneath it while shifting color.
func buildDemo(s *smoothie.Smoothie, kind easing.Kind) error {
	arrow := s.Arrow(element.WithFillHex("#1e88e5"), element.WithZIndex(1))
	for i := range demoCycles {
		steps := []struct {
			scale float64
			angle float64
		}{
			{scale: 0.5, angle: float64(2*i+1) * math.Pi / 2},
			{scale: 1, angle: float64(i+1) * math.Pi},
		}
		for _, step := range steps {
			if err := s.Animate(arrow, element.Scale, step.scale, smoothie.Over(demoStep), smoothie.Ease(kind), smoothie.Parallel()); err != nil {
				return err
			}
			if err := s.Animate(arrow, element.Angle, step.angle, smoothie.Over(demoStep), smoothie.Ease(kind)); err != nil {
				return err
			}
		}
	}
	total := s.Cursor()

	circle := s.Circle(0.15,
		element.WithPosition(-0.8, -0.6),
		element.WithFill(colorful.Color{R: 0.9, G: 0.2, B: 0.3}),
		element.WithFillTarget(colorful.Color{R: 0.2, G: 0.8, B: 0.4}),
		element.WithOpacity(0),
	)
	clips := []struct {
		p    element.Property
		to   float64
		over time.Duration
	}{
		{element.Opacity, 1, demoStep},
		{element.X, 0.8, total},
		{element.ColorMix, 1, total},
	}
	for _, c := range clips {
		if err := s.Animate(circle, c.p, c.to, smoothie.At(0), smoothie.Over(c.over), smoothie.Ease(easing.InOutSine)); err != nil {
			return err
		}
	}
	return nil
}
