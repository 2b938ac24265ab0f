package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	radToDeg = 180 / math.Pi
	degToRad = math.Pi / 180
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * degToRad
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * radToDeg
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// Hadamard returns the component-wise product of a and b.
func Hadamard(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}
