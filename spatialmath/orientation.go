// Package spatialmath defines the rotation representations used to move camera poses between
// coordinate conventions.
package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
	RotationMatrix() *RotationMatrix
}

var (
	_ Orientation = (*quaternion)(nil)
	_ Orientation = (*R4AA)(nil)
	_ Orientation = (*EulerAngles)(nil)
	_ Orientation = (*RotationMatrix)(nil)
)

// NewOrientationFromQuaternion wraps a quaternion as an Orientation. The quaternion is normalized.
func NewOrientationFromQuaternion(q quat.Number) Orientation {
	qq := quaternion(Normalize(q))
	return &qq
}
