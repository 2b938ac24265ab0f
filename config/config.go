// Package config defines the file that configures camloader.
package config

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/gsplat-tools/camloader/logging"
	"github.com/gsplat-tools/camloader/transform"
)

// DefaultCamerasPath is used when a config names no pose document.
const DefaultCamerasPath = "cameras.json"

// Config describes where poses come from and how they are converted.
type Config struct {
	CamerasPath string    `json:"cameras_path,omitempty" jsonschema_description:"Path to the pose document. Relative paths resolve against the config file."`
	AxisScale   []float64 `json:"axis_scale,omitempty" jsonschema:"minItems=3,maxItems=3" jsonschema_description:"Per axis translation multipliers, default [1, -1, 1]."`
	// FlipHandedness is derived from AxisScale when unset.
	FlipHandedness  *bool  `json:"flip_handedness,omitempty" jsonschema_description:"Negate Y of the camera basis. Defaults to axis_scale[1] < 0."`
	OrientationMode string `json:"orientation_mode,omitempty" jsonschema:"enum=look_rotation,enum=exact_matrix,default=look_rotation"`
	// SelectedIndex is not range checked here: the loaded set decides, and an index outside it is a
	// logged no-op like the --index flag.
	SelectedIndex   int    `json:"selected_index,omitempty" jsonschema_description:"Camera applied by show and apply when --index is not given."`
	LogLevel        string `json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Watch           bool   `json:"watch,omitempty" jsonschema_description:"Reload the pose document whenever it changes."`

	ConfigFilePath string `json:"-"`
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		CamerasPath: DefaultCamerasPath,
		AxisScale:   []float64{transform.DefaultAxisScale.X, transform.DefaultAxisScale.Y, transform.DefaultAxisScale.Z},
	}
}

// Ensure fills unset fields with defaults and validates the result.
func (c *Config) Ensure(logger logging.Logger) error {
	if c.CamerasPath == "" {
		c.CamerasPath = DefaultCamerasPath
	}
	if c.ConfigFilePath != "" && !filepath.IsAbs(c.CamerasPath) {
		c.CamerasPath = filepath.Join(filepath.Dir(c.ConfigFilePath), c.CamerasPath)
	}
	if len(c.AxisScale) == 0 {
		c.AxisScale = Default().AxisScale
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if err := c.Validate("config"); err != nil {
		return err
	}
	logger.Debugw("config ensured", "cameras_path", c.CamerasPath, "orientation_mode", c.OrientationMode)
	return nil
}

// Validate reports every invalid field, not just the first.
func (c *Config) Validate(path string) error {
	var err error
	if c.CamerasPath == "" {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "cameras_path"))
	}
	if len(c.AxisScale) != 3 {
		err = multierr.Append(err, utils.NewConfigValidationError(
			path, errors.Errorf("axis_scale must have 3 elements, got %d", len(c.AxisScale))))
	} else {
		for i, v := range c.AxisScale {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				err = multierr.Append(err, utils.NewConfigValidationError(
					fmt.Sprintf("%s.axis_scale.%d", path, i), errors.New("must be finite")))
			}
		}
	}
	if _, modeErr := transform.ParseOrientationMode(c.OrientationMode); modeErr != nil {
		err = multierr.Append(err, utils.NewConfigValidationError(path, modeErr))
	}
	if c.LogLevel != "" {
		if _, levelErr := logging.LevelFromString(c.LogLevel); levelErr != nil {
			err = multierr.Append(err, utils.NewConfigValidationError(path, levelErr))
		}
	}
	return err
}

// Conversion returns the transform settings of a validated config.
func (c *Config) Conversion() transform.ConversionConfig {
	scale := transform.DefaultAxisScale
	if len(c.AxisScale) == 3 {
		scale = r3.Vector{X: c.AxisScale[0], Y: c.AxisScale[1], Z: c.AxisScale[2]}
	}
	cfg := transform.NewConversionConfig(scale)
	if c.FlipHandedness != nil {
		cfg.FlipHandedness = *c.FlipHandedness
	}
	cfg.OrientationMode, _ = transform.ParseOrientationMode(c.OrientationMode)
	return cfg
}

// Level returns the configured log level, INFO when unset or invalid.
func (c *Config) Level() logging.Level {
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// Schema describes the config file format.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
