package common

import "math"

// Cross2 returns the z component of the cross product of (ax, ay) and (bx, by).
// Positive when b is counter-clockwise from a.
func Cross2(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// NearlyEqual reports whether a and b differ by no more than eps.
func NearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
