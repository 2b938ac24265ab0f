package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// parallelEpsilon bounds |normalize(up) x normalize(forward)| below which the pair cannot fix a roll.
const parallelEpsilon = 1e-6

var fallbackUpAxes = []r3.Vector{
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 1, Y: 0, Z: 0},
}

// LookRotation returns the unit rotation whose local +Z axis maps to forward and whose local +Y
// axis lies in the plane spanned by forward and up, on the side of up. The frame follows the
// left-handed convention x = up x forward.
//
// The second return value reports a degenerate input: forward has no length, or up is zero or
// parallel to forward. In that case the roll is taken from FallbackUp, and a zero forward yields
// the identity rotation.
func LookRotation(forward, up r3.Vector) (quat.Number, bool) {
	if !finite(forward) || forward.Norm() < parallelEpsilon {
		return quat.Number{Real: 1}, true
	}
	z := forward.Normalize()

	degenerate := false
	if !finite(up) || up.Norm() < parallelEpsilon || up.Normalize().Cross(z).Norm() < parallelEpsilon {
		degenerate = true
		up = FallbackUp(z)
	}

	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	rm := NewRotationMatrixFromColumns(x, y, z)
	return rm.Quaternion(), degenerate
}

// FallbackUp picks the world axis least aligned with forward, preferring Y, then Z, then X on ties.
func FallbackUp(forward r3.Vector) r3.Vector {
	best := fallbackUpAxes[0]
	bestDot := math.Inf(1)
	for _, axis := range fallbackUpAxes {
		if d := math.Abs(axis.Dot(forward)); d < bestDot {
			best, bestDot = axis, d
		}
	}
	return best
}

func finite(v r3.Vector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
