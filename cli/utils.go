package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/num/quat"

	"github.com/gsplat-tools/camloader/spatialmath"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// infof prints a message prefixed with "Info: ".
func infof(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Info: "+format+"\n", a...)
}

// warningf prints a message prefixed with "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Warning: "+format+"\n", a...)
}

// parseScale parses "x,y,z" into a vector.
func parseScale(s string) (r3.Vector, error) {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	if len(parts) != 3 {
		return r3.Vector{}, errors.Errorf("scale %q must have 3 comma separated values", s)
	}
	values := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "scale component %d", i)
		}
		values[i] = v
	}
	return r3.Vector{X: values[0], Y: values[1], Z: values[2]}, nil
}

// zeroed rounds values that would print as zero to 0 so they never render as "-0.000".
func zeroed(v, tolerance float64) float64 {
	if math.Abs(v) < tolerance {
		return 0
	}
	return v
}

func formatVector(v r3.Vector) string {
	const tol = 5e-4
	return fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", zeroed(v.X, tol), zeroed(v.Y, tol), zeroed(v.Z, tol))
}

func formatQuaternion(q quat.Number) string {
	const tol = 5e-5
	return fmt.Sprintf("W:%.4f, X:%.4f, Y:%.4f, Z:%.4f",
		zeroed(q.Real, tol), zeroed(q.Imag, tol), zeroed(q.Jmag, tol), zeroed(q.Kmag, tol))
}

func formatEuler(q quat.Number) string {
	ea := spatialmath.NewOrientationFromQuaternion(q).EulerAngles()
	const tol = 5e-3
	return fmt.Sprintf("Roll:%.2f, Pitch:%.2f, Yaw:%.2f",
		zeroed(spatialmath.RadToDeg(ea.Roll), tol),
		zeroed(spatialmath.RadToDeg(ea.Pitch), tol),
		zeroed(spatialmath.RadToDeg(ea.Yaw), tol),
	)
}
