package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.)} // in quaternion representation
	aa45x = &R4AA{th, 1., 0., 0.}                                        // in axis-angle representation
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}                      // in euler angle representation
	rm45x = NewRotationMatrixFromRows(
		r3.Vector{X: 1, Y: 0, Z: 0},
		r3.Vector{X: 0, Y: math.Cos(th), Z: -math.Sin(th)},
		r3.Vector{X: 0, Y: math.Sin(th), Z: math.Cos(th)},
	) // in rotation matrix representation
)

func TestOrientationRepresentations(t *testing.T) {
	for name, o := range map[string]Orientation{
		"quaternion":      NewOrientationFromQuaternion(q45x),
		"axis angle":      aa45x,
		"euler angles":    ea45x,
		"rotation matrix": &rm45x,
	} {
		t.Run(name, func(t *testing.T) {
			test.That(t, o.Quaternion().Real, test.ShouldAlmostEqual, q45x.Real)
			test.That(t, o.Quaternion().Imag, test.ShouldAlmostEqual, q45x.Imag)
			test.That(t, o.Quaternion().Jmag, test.ShouldAlmostEqual, q45x.Jmag)
			test.That(t, o.Quaternion().Kmag, test.ShouldAlmostEqual, q45x.Kmag)
			test.That(t, o.AxisAngles().Theta, test.ShouldAlmostEqual, aa45x.Theta)
			test.That(t, o.AxisAngles().RX, test.ShouldAlmostEqual, aa45x.RX)
			test.That(t, o.EulerAngles().Roll, test.ShouldAlmostEqual, ea45x.Roll)
			test.That(t, o.EulerAngles().Pitch, test.ShouldAlmostEqual, ea45x.Pitch)
			test.That(t, o.EulerAngles().Yaw, test.ShouldAlmostEqual, ea45x.Yaw)
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					test.That(t, o.RotationMatrix().At(r, c), test.ShouldAlmostEqual, rm45x.At(r, c))
				}
			}
		})
	}
}

func TestOrientationFromQuaternion(t *testing.T) {
	o := NewOrientationFromQuaternion(quat.Number{Real: 2})
	test.That(t, o.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, o.AxisAngles(), test.ShouldResemble, NewR4AA())
	test.That(t, o.EulerAngles(), test.ShouldResemble, NewEulerAngles())
	id := IdentityRotationMatrix()
	test.That(t, o.RotationMatrix(), test.ShouldResemble, &id)
}

func TestImagNorm(t *testing.T) {
	// q45x is a unit quaternion whose vector part is sin(th/2) long
	test.That(t, quat.Abs(q45x), test.ShouldAlmostEqual, 1)
	test.That(t, ImagNorm(q45x), test.ShouldAlmostEqual, math.Sin(th/2))
	test.That(t, ImagNorm(quat.Number{Real: 1}), test.ShouldEqual, 0.)
}

func TestQuaternionAlmostEqual(t *testing.T) {
	test.That(t, QuaternionAlmostEqual(q45x, Flip(q45x), 1e-9), test.ShouldBeTrue)
	test.That(t, QuaternionAlmostEqual(q45x, quat.Number{Real: 1}, 1e-3), test.ShouldBeFalse)
}

func TestNormalize(t *testing.T) {
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, Normalize(quat.Number{Real: math.NaN()}), test.ShouldResemble, quat.Number{Real: 1})
	n := Normalize(quat.Number{Real: 2, Kmag: 2})
	test.That(t, quat.Abs(n), test.ShouldAlmostEqual, 1)
}

func TestRotateVector(t *testing.T) {
	v := RotateVector(q45x, r3.Vector{X: 0, Y: 1, Z: 0})
	test.That(t, R3VectorAlmostEqual(v, rm45x.Mul(r3.Vector{X: 0, Y: 1, Z: 0}), 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(v, r3.Vector{X: 0, Y: math.Sqrt2 / 2, Z: math.Sqrt2 / 2}, 1e-9), test.ShouldBeTrue)
}

func TestR4AANormalizeZeroAxis(t *testing.T) {
	aa := &R4AA{Theta: 1}
	test.That(t, aa.ToQuat(), test.ShouldResemble, quat.Number{Real: 1})
}
