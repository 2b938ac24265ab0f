// Package transform converts reconstruction-frame camera poses (right-handed, Y down,
// world-to-camera rotation) into engine-frame camera poses (left-handed, Y up, camera-to-world
// orientation).
package transform

import (
	"context"
	"runtime"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/num/quat"

	"github.com/gsplat-tools/camloader/diagnostics"
	"github.com/gsplat-tools/camloader/posefile"
	"github.com/gsplat-tools/camloader/spatialmath"
)

// minBasisVolume is the smallest |up x forward| for which ExactMatrix trusts the basis.
const minBasisVolume = 1e-6

// EngineCameraPose is the engine-space pose of one camera.
type EngineCameraPose struct {
	Position r3.Vector
	// Orientation is a unit quaternion mapping camera-local axes to engine world axes.
	Orientation quat.Number
	// Degenerate is set when forward and up could not fix the roll and a fallback up axis was used.
	Degenerate bool

	EntryID int
	Label   string
}

// Basis holds the camera-to-world axes of an entry in the frame the orientation is built from.
type Basis struct {
	Right   r3.Vector
	Up      r3.Vector
	Forward r3.Vector
}

// CameraBasis inverts the world-to-camera rotation by transposition and returns its columns,
// with Y negated on all three when flip is set.
func CameraBasis(rotation spatialmath.RotationMatrix, flip bool) Basis {
	camToWorld := rotation.Transpose()
	b := Basis{
		Right:   camToWorld.Col(0),
		Up:      camToWorld.Col(1),
		Forward: camToWorld.Col(2),
	}
	if flip {
		b.Right.Y, b.Up.Y, b.Forward.Y = -b.Right.Y, -b.Up.Y, -b.Forward.Y
	}
	return b
}

// Transform converts one entry. It has no side effects and never fails: a degenerate basis
// produces a valid orientation with Degenerate set.
func Transform(entry posefile.PoseEntry, cfg ConversionConfig) EngineCameraPose {
	basis := CameraBasis(entry.Rotation, cfg.FlipHandedness)

	var orientation quat.Number
	var degenerate bool
	switch cfg.OrientationMode {
	case ExactMatrix:
		orientation, degenerate = exactOrientation(basis)
	default:
		orientation, degenerate = spatialmath.LookRotation(basis.Forward, basis.Up.Mul(-1))
	}

	return EngineCameraPose{
		Position:    spatialmath.Hadamard(entry.Translation, cfg.AxisScale),
		Orientation: orientation,
		Degenerate:  degenerate,
		EntryID:     entry.ID,
		Label:       entry.Label,
	}
}

// exactOrientation places the negated up axis in local +Y and forward in local +Z, then picks the
// sign of the right axis that keeps the matrix a proper rotation. Any roll carried by the right
// axis survives, unlike LookRotation which rebuilds it from forward and up.
func exactOrientation(b Basis) (quat.Number, bool) {
	y := b.Up.Mul(-1)
	z := b.Forward
	if y.Cross(z).Norm() < minBasisVolume {
		return spatialmath.LookRotation(z, y)
	}
	x := b.Right
	if x.Dot(y.Cross(z)) < 0 {
		x = x.Mul(-1)
	}
	rm := spatialmath.NewRotationMatrixFromColumns(x, y, z)
	return rm.Quaternion(), false
}

// TransformAll converts entries concurrently and returns the poses in input order. Degenerate
// orientations are reported to sink, in order, once every pose is computed. The only error is
// ctx's.
func TransformAll(
	ctx context.Context,
	entries []posefile.PoseEntry,
	cfg ConversionConfig,
	sink diagnostics.Sink,
) ([]EngineCameraPose, error) {
	if sink == nil {
		sink = diagnostics.Noop
	}
	poses := make([]EngineCameraPose, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			poses[i] = Transform(entries[i], cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, pose := range poses {
		if pose.Degenerate {
			sink.DegenerateOrientation(ctx, pose.EntryID)
		}
	}
	return poses, nil
}
