package posefile

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/gsplat-tools/camloader/spatialmath"
)

// PoseEntry is one reconstructed camera observation. Entries are values and are never mutated
// after extraction.
type PoseEntry struct {
	ID    int
	Label string
	// Translation is the camera position in the reconstruction frame.
	Translation r3.Vector
	// Rotation is the reconstruction-frame world-to-camera rotation, as read.
	Rotation   spatialmath.RotationMatrix
	Intrinsics Intrinsics
}

// Intrinsics are the auxiliary image fields of a record. Any of them may be zero when the record
// omits it or carries a value that does not parse.
type Intrinsics struct {
	Width  int
	Height int
	Fx     float64
	Fy     float64
}

// VerticalFOV returns the vertical field of view in degrees, or 0 when Height or Fy is unknown.
func (in Intrinsics) VerticalFOV() float64 {
	return fov(float64(in.Height), in.Fy)
}

// HorizontalFOV returns the horizontal field of view in degrees, or 0 when Width or Fx is unknown.
func (in Intrinsics) HorizontalFOV() float64 {
	return fov(float64(in.Width), in.Fx)
}

func fov(extent, focal float64) float64 {
	if extent <= 0 || focal <= 0 {
		return 0
	}
	return spatialmath.RadToDeg(2 * math.Atan(extent/(2*focal)))
}
