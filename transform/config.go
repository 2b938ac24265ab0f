package transform

import (
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// OrientationMode selects how the engine orientation is derived from the camera basis.
type OrientationMode int

const (
	// LookRotation builds the orientation from the forward axis and the negated up axis.
	LookRotation OrientationMode = iota
	// ExactMatrix converts the whole handedness-corrected basis to a quaternion, keeping any roll
	// the forward/up pair does not capture.
	ExactMatrix
)

var modeNames = map[OrientationMode]string{
	LookRotation: "look_rotation",
	ExactMatrix:  "exact_matrix",
}

func (m OrientationMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseOrientationMode accepts the names printed by String, case insensitively. An empty string
// selects LookRotation.
func ParseOrientationMode(s string) (OrientationMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LookRotation, nil
	}
	for mode, name := range modeNames {
		if s == name {
			return mode, nil
		}
	}
	return LookRotation, errors.Errorf("unknown orientation mode %q, expected %q or %q",
		s, modeNames[LookRotation], modeNames[ExactMatrix])
}

// MarshalText implements encoding.TextMarshaler.
func (m OrientationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OrientationMode) UnmarshalText(text []byte) error {
	mode, err := ParseOrientationMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ConversionConfig controls how reconstruction-frame poses map into the engine frame.
// AxisScale and FlipHandedness are independent; most callers set them together through
// NewConversionConfig.
type ConversionConfig struct {
	// AxisScale multiplies the translation component-wise.
	AxisScale r3.Vector
	// FlipHandedness negates the Y component of the camera basis before the orientation is built.
	FlipHandedness  bool
	OrientationMode OrientationMode
}

// DefaultAxisScale turns a Y-down reconstruction into a Y-up engine scene.
var DefaultAxisScale = r3.Vector{X: 1, Y: -1, Z: 1}

// DefaultConversionConfig returns the conversion for a Y-down right-handed source.
func DefaultConversionConfig() ConversionConfig {
	return NewConversionConfig(DefaultAxisScale)
}

// NewConversionConfig returns a config for scale that flips the basis handedness exactly when the
// scale reflects Y.
func NewConversionConfig(scale r3.Vector) ConversionConfig {
	return ConversionConfig{
		AxisScale:      scale,
		FlipHandedness: scale.Y < 0,
	}
}
