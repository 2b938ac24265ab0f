package config

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"github.com/gsplat-tools/camloader/logging"
	"github.com/gsplat-tools/camloader/testutils"
	"github.com/gsplat-tools/camloader/transform"
)

func TestReadDefaults(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	path := testutils.WriteFile(t, dir, "camloader.json", []byte(`{}`))

	cfg, err := Read(context.Background(), path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.CamerasPath, test.ShouldEqual, filepath.Join(dir, DefaultCamerasPath))
	test.That(t, cfg.AxisScale, test.ShouldResemble, []float64{1, -1, 1})
	test.That(t, cfg.Conversion(), test.ShouldResemble, transform.DefaultConversionConfig())
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)
	test.That(t, cfg.Watch, test.ShouldBeFalse)
}

func TestReadExpandsEnvironment(t *testing.T) {
	t.Setenv("CAMLOADER_SCENE", "garden")
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	path := testutils.WriteFile(t, dir, "camloader.json", []byte(`{
		"cameras_path": "${CAMLOADER_SCENE}/cameras.json",
		"log_level": "debug",
		"watch": true
	}`))

	cfg, err := Read(context.Background(), path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.CamerasPath, test.ShouldEqual, filepath.Join(dir, "garden", "cameras.json"))
	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.Watch, test.ShouldBeTrue)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "nope.json"), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReaderConversion(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name string
		json string
		want transform.ConversionConfig
	}{
		{
			"scale derives flip",
			`{"axis_scale": [2, 1, 1]}`,
			transform.ConversionConfig{AxisScale: r3.Vector{X: 2, Y: 1, Z: 1}},
		},
		{
			"explicit flip wins",
			`{"axis_scale": [1, -1, 1], "flip_handedness": false}`,
			transform.ConversionConfig{AxisScale: r3.Vector{X: 1, Y: -1, Z: 1}},
		},
		{
			"flip without reflection",
			`{"axis_scale": [1, 1, 1], "flip_handedness": true, "orientation_mode": "exact_matrix"}`,
			transform.ConversionConfig{
				AxisScale:       r3.Vector{X: 1, Y: 1, Z: 1},
				FlipHandedness:  true,
				OrientationMode: transform.ExactMatrix,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := FromReader(context.Background(), "", strings.NewReader(tc.json), logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, cfg.Conversion(), test.ShouldResemble, tc.want)
		})
	}
}

func TestFromReaderKeepsPathWithoutConfigFile(t *testing.T) {
	cfg, err := FromReader(context.Background(), "", strings.NewReader(`{"cameras_path": "scene/cameras.json"}`),
		logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.CamerasPath, test.ShouldEqual, "scene/cameras.json")
}

func TestFromReaderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := FromReader(context.Background(), "", strings.NewReader(`{"axis_scale": `), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode")

	_, err = FromReader(context.Background(), "", strings.NewReader(`{
		"axis_scale": [1, 2],
		"orientation_mode": "euler",
		"log_level": "loud"
	}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid config")
	test.That(t, err.Error(), test.ShouldContainSubstring, "axis_scale")
	test.That(t, err.Error(), test.ShouldContainSubstring, "euler")
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
}

func TestValidate(t *testing.T) {
	test.That(t, Default().Validate("config"), test.ShouldBeNil)

	cfg := &Config{AxisScale: []float64{1}, OrientationMode: "spin", SelectedIndex: -1, LogLevel: "x"}
	err := cfg.Validate("config")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 4)
}

func TestNegativeSelectedIndexIsAccepted(t *testing.T) {
	cfg, err := FromReader(context.Background(), "", strings.NewReader(`{"selected_index": -1}`),
		logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.SelectedIndex, test.ShouldEqual, -1)
}

func TestSchema(t *testing.T) {
	out, err := json.Marshal(Schema())
	test.That(t, err, test.ShouldBeNil)
	for _, want := range []string{"cameras_path", "axis_scale", "flip_handedness", "exact_matrix", "look_rotation"} {
		test.That(t, string(out), test.ShouldContainSubstring, want)
	}
	test.That(t, string(out), test.ShouldNotContainSubstring, "ConfigFilePath")
}
