package geospatial

import "math"

// Euclidean returns the straight-line distance between two ground-plane points.
func Euclidean(x1, z1, x2, z2 float64) float64 {
	return math.Hypot(x2-x1, z2-z1)
}

// Bearing returns the direction of travel from (x1,z1) to (x2,z2) as atan2(Δz, Δx), in radians.
func Bearing(x1, z1, x2, z2 float64) float64 {
	return math.Atan2(z2-z1, x2-x1)
}

// NormalizeAngle wraps a radian angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	switch {
	case a > math.Pi:
		a -= 2 * math.Pi
	case a <= -math.Pi:
		a += 2 * math.Pi
	}
	return a
}
