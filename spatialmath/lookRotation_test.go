package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

var (
	xAxis = r3.Vector{X: 1, Y: 0, Z: 0}
	yAxis = r3.Vector{X: 0, Y: 1, Z: 0}
	zAxis = r3.Vector{X: 0, Y: 0, Z: 1}
)

func TestLookRotationIdentity(t *testing.T) {
	q, degenerate := LookRotation(zAxis, yAxis)
	test.That(t, degenerate, test.ShouldBeFalse)
	test.That(t, QuaternionAlmostEqual(q, quat.Number{Real: 1}, 1e-9), test.ShouldBeTrue)
}

func TestLookRotationUpsideDown(t *testing.T) {
	q, degenerate := LookRotation(zAxis, yAxis.Mul(-1))
	test.That(t, degenerate, test.ShouldBeFalse)
	// 180 degrees around the forward axis
	test.That(t, QuaternionAlmostEqual(q, quat.Number{Kmag: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(RotateVector(q, yAxis), yAxis.Mul(-1), 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(RotateVector(q, xAxis), xAxis.Mul(-1), 1e-9), test.ShouldBeTrue)
}

func TestLookRotationMapsAxes(t *testing.T) {
	forward := r3.Vector{X: 1, Y: 2, Z: -3}
	up := r3.Vector{X: 0.3, Y: 1, Z: 0.2}
	q, degenerate := LookRotation(forward, up)
	test.That(t, degenerate, test.ShouldBeFalse)
	test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1)

	// local +Z becomes forward
	test.That(t, R3VectorAlmostEqual(RotateVector(q, zAxis), forward.Normalize(), 1e-9), test.ShouldBeTrue)
	// local +Y is perpendicular to forward and on the side of up
	localUp := RotateVector(q, yAxis)
	test.That(t, localUp.Dot(forward), test.ShouldAlmostEqual, 0)
	test.That(t, localUp.Dot(up), test.ShouldBeGreaterThan, 0)
	// x = up x forward
	test.That(t, R3VectorAlmostEqual(RotateVector(q, xAxis), localUp.Cross(forward.Normalize()), 1e-9), test.ShouldBeTrue)
}

func TestLookRotationDegenerate(t *testing.T) {
	t.Run("forward parallel to up", func(t *testing.T) {
		q, degenerate := LookRotation(yAxis, yAxis)
		test.That(t, degenerate, test.ShouldBeTrue)
		test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1)
		test.That(t, R3VectorAlmostEqual(RotateVector(q, zAxis), yAxis, 1e-9), test.ShouldBeTrue)
		// the roll comes from the fallback axis, so repeated calls agree
		again, _ := LookRotation(yAxis, yAxis)
		test.That(t, again, test.ShouldResemble, q)
	})

	t.Run("forward anti-parallel to up", func(t *testing.T) {
		q, degenerate := LookRotation(yAxis.Mul(-1), yAxis)
		test.That(t, degenerate, test.ShouldBeTrue)
		test.That(t, hasNaN(q), test.ShouldBeFalse)
		test.That(t, R3VectorAlmostEqual(RotateVector(q, zAxis), yAxis.Mul(-1), 1e-9), test.ShouldBeTrue)
	})

	t.Run("zero forward", func(t *testing.T) {
		q, degenerate := LookRotation(r3.Vector{}, yAxis)
		test.That(t, degenerate, test.ShouldBeTrue)
		test.That(t, q, test.ShouldResemble, quat.Number{Real: 1})
	})

	t.Run("zero up", func(t *testing.T) {
		q, degenerate := LookRotation(zAxis, r3.Vector{})
		test.That(t, degenerate, test.ShouldBeTrue)
		test.That(t, QuaternionAlmostEqual(q, quat.Number{Real: 1}, 1e-9), test.ShouldBeTrue)
	})

	t.Run("NaN input", func(t *testing.T) {
		q, degenerate := LookRotation(r3.Vector{X: math.NaN()}, yAxis)
		test.That(t, degenerate, test.ShouldBeTrue)
		test.That(t, hasNaN(q), test.ShouldBeFalse)
	})
}

func TestFallbackUp(t *testing.T) {
	test.That(t, FallbackUp(zAxis), test.ShouldResemble, yAxis)
	test.That(t, FallbackUp(yAxis), test.ShouldResemble, zAxis)
	test.That(t, FallbackUp(r3.Vector{X: 0, Y: 0.7, Z: 0.7}.Normalize()), test.ShouldResemble, xAxis)
}

func hasNaN(q quat.Number) bool {
	return math.IsNaN(q.Real) || math.IsNaN(q.Imag) || math.IsNaN(q.Jmag) || math.IsNaN(q.Kmag)
}
