package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestNewRotationMatrix(t *testing.T) {
	_, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)

	rm, err := NewRotationMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.At(1, 2), test.ShouldEqual, 6.)
	test.That(t, rm.Row(2), test.ShouldResemble, r3.Vector{X: 7, Y: 8, Z: 9})
	test.That(t, rm.Col(0), test.ShouldResemble, r3.Vector{X: 1, Y: 4, Z: 7})
	test.That(t, rm.Slice(), test.ShouldResemble, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})

	tr := rm.Transpose()
	test.That(t, tr.Row(0), test.ShouldResemble, rm.Col(0))
	test.That(t, tr.Col(2), test.ShouldResemble, rm.Row(2))
	// the source matrix is a value and is not touched by the transpose
	test.That(t, rm.At(0, 1), test.ShouldEqual, 2.)
}

func TestRotationMatrixColumns(t *testing.T) {
	c0 := r3.Vector{X: 0, Y: 1, Z: 0}
	c1 := r3.Vector{X: -1, Y: 0, Z: 0}
	c2 := r3.Vector{X: 0, Y: 0, Z: 1}
	rm := NewRotationMatrixFromColumns(c0, c1, c2)
	test.That(t, rm.Col(0), test.ShouldResemble, c0)
	test.That(t, rm.Col(1), test.ShouldResemble, c1)
	test.That(t, rm.Col(2), test.ShouldResemble, c2)
	test.That(t, rm.Determinant(), test.ShouldAlmostEqual, 1)

	// 90 degrees around +Z
	expected := quat.Number{Real: math.Cos(math.Pi / 4), Kmag: math.Sin(math.Pi / 4)}
	test.That(t, QuaternionAlmostEqual(rm.Quaternion(), expected, 1e-9), test.ShouldBeTrue)
}

func TestRotationMatrixRoundTrip(t *testing.T) {
	for _, q := range []quat.Number{
		{Real: 1},
		q45x,
		Normalize(quat.Number{Real: 0.1, Imag: 0.7, Jmag: -0.2, Kmag: 0.4}),
		{Kmag: 1},
		{Jmag: 1},
	} {
		rm := QuatToRotationMatrix(q)
		test.That(t, rm.Determinant(), test.ShouldAlmostEqual, 1)
		test.That(t, QuaternionAlmostEqual(rm.Quaternion(), q, 1e-9), test.ShouldBeTrue)
	}
}

func TestRotationMatrixQuaternionIsUnit(t *testing.T) {
	// not orthonormal, still yields a finite unit quaternion
	rm, err := NewRotationMatrix([]float64{2, 0, 0, 0, 0.5, 0, 0, 0, 3})
	test.That(t, err, test.ShouldBeNil)
	q := rm.Quaternion()
	test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1)
}
