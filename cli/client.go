package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"

	"github.com/gsplat-tools/camloader/config"
	"github.com/gsplat-tools/camloader/diagnostics"
	"github.com/gsplat-tools/camloader/logging"
	"github.com/gsplat-tools/camloader/posefile"
	"github.com/gsplat-tools/camloader/poseset"
	"github.com/gsplat-tools/camloader/spatialmath"
	"github.com/gsplat-tools/camloader/transform"
)

// poseClient holds everything one command needs: the resolved config, the loaded set and the
// diagnostics collected while using it.
type poseClient struct {
	conf       *config.Config
	conversion transform.ConversionConfig
	logger     logging.Logger
	counters   *diagnostics.Counters
	set        *poseset.Set
	stats      bool
}

func newPoseClient(c *cli.Context) (*poseClient, error) {
	logger := logging.NewBlankLogger("camloader")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))

	conf := config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		var err error
		conf, err = config.Read(c.Context, path, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else if err := conf.Ensure(logger); err != nil {
		return nil, err
	}
	if path := c.Path(generalFlagCameras); path != "" {
		conf.CamerasPath = path
	}

	logger.SetLevel(conf.Level())
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	conversion := conf.Conversion()
	if s := c.String(generalFlagScale); s != "" {
		scale, err := parseScale(s)
		if err != nil {
			return nil, err
		}
		conversion.AxisScale = scale
		if conf.FlipHandedness == nil {
			conversion.FlipHandedness = scale.Y < 0
		}
	}
	if c.Bool(generalFlagNoFlip) {
		conversion.FlipHandedness = false
	}
	if m := c.String(generalFlagMode); m != "" {
		mode, err := transform.ParseOrientationMode(m)
		if err != nil {
			return nil, err
		}
		conversion.OrientationMode = mode
	}

	stats := c.Bool(generalFlagStats)
	sinks := []diagnostics.Sink{diagnostics.NewLogSink(logger.Sublogger("diagnostics"))}
	if stats {
		if err := diagnostics.RegisterViews(); err != nil {
			return nil, err
		}
		sinks = append(sinks, diagnostics.NewStatsSink())
	}
	counters := diagnostics.NewCounters()
	sinks = append(sinks, counters)

	logger.Debugw("resolved conversion",
		"scale", conversion.AxisScale, "flip", conversion.FlipHandedness, "mode", conversion.OrientationMode.String())

	return &poseClient{
		conf:       conf,
		conversion: conversion,
		logger:     logger,
		counters:   counters,
		set:        poseset.NewSet(logger.Sublogger("poses"), diagnostics.Multi(sinks...)),
		stats:      stats,
	}, nil
}

// close flushes logs and, when requested, reports diagnostic totals.
func (pc *poseClient) close() error {
	counts := pc.counters.Snapshot()
	pc.logger.Debugw("diagnostics",
		"loaded", counts.Loaded,
		"skipped", counts.Skipped,
		"missing_source", counts.MissingSource,
		"invalid_selection", counts.InvalidSelection,
		"degenerate", counts.Degenerate)

	var err error
	if pc.stats {
		totals, totalsErr := diagnostics.Totals()
		err = multierr.Append(err, totalsErr)
		for name, total := range totals {
			pc.logger.Infow("diagnostic total", "view", name, "total", total)
		}
	}
	return multierr.Append(err, pc.logger.Sync())
}

func (pc *poseClient) load(ctx context.Context) *poseset.Snapshot {
	return pc.set.Reload(ctx, pc.conf.CamerasPath)
}

// run loads the pose document once and calls render, or, when the config asks to watch, calls
// render after every reload until the command is interrupted.
func (pc *poseClient) run(c *cli.Context, render func(*poseset.Snapshot)) error {
	if pc.conf.Watch {
		return pc.watch(c, render)
	}
	render(pc.load(c.Context))
	return nil
}

func (pc *poseClient) watch(c *cli.Context, onReload func(*poseset.Snapshot)) error {
	infof(c.App.ErrWriter, "watching %s, interrupt to stop", pc.conf.CamerasPath)
	return pc.set.Watch(c.Context, pc.conf.CamerasPath, poseset.WithReloadHook(onReload))
}

func (pc *poseClient) index(c *cli.Context) int {
	if c.IsSet(poseFlagIndex) {
		return c.Int(poseFlagIndex)
	}
	return pc.conf.SelectedIndex
}

func withClient(action func(*cli.Context, *poseClient) error) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		client, err := newPoseClient(c)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, client.close())
		}()
		return action(c, client)
	}
}

// ListAction is the corresponding Action for 'list'.
func ListAction(c *cli.Context) error {
	return withClient(func(c *cli.Context, client *poseClient) error {
		return client.listAction(c)
	})(c)
}

func (pc *poseClient) listAction(c *cli.Context) error {
	var listErr error
	err := pc.run(c, func(snap *poseset.Snapshot) {
		listErr = pc.list(c, snap)
	})
	return multierr.Combine(err, listErr)
}

func (pc *poseClient) list(c *cli.Context, snap *poseset.Snapshot) error {
	// snap is current: only this goroutine reloads the set
	poses, err := pc.set.Poses(c.Context, pc.conversion)
	if err != nil {
		return err
	}
	entries := snap.Entries()

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "ID", "Label", "Position", "Orientation", "VFOV"})
	for i, pose := range poses {
		orientation := formatEuler(pose.Orientation)
		if pose.Degenerate {
			orientation += " (fallback roll)"
		}
		t.AppendRow(table.Row{
			i,
			pose.EntryID,
			pose.Label,
			formatVector(pose.Position),
			orientation,
			fmt.Sprintf("%.2f", entries[i].Intrinsics.VerticalFOV()),
		})
	}
	printf(c.App.Writer, "%s", t.Render())

	summary := snap.Summary()
	printf(c.App.Writer, "%d camera poses loaded from %s, %d skipped", summary.Loaded, snap.Source(), summary.Skipped)
	return nil
}

// ShowAction is the corresponding Action for 'show'.
func ShowAction(c *cli.Context) error {
	return withClient(func(c *cli.Context, client *poseClient) error {
		return client.showAction(c)
	})(c)
}

func (pc *poseClient) showAction(c *cli.Context) error {
	index := pc.index(c)
	return pc.run(c, func(snap *poseset.Snapshot) {
		pc.show(c, snap, index)
	})
}

func (pc *poseClient) show(c *cli.Context, snap *poseset.Snapshot, index int) {
	pose, ok := pc.set.Select(c.Context, index, pc.conversion)
	if !ok {
		warningf(c.App.ErrWriter, "no camera at index %d, %d loaded", index, snap.Len())
		return
	}
	entry, _ := snap.At(index)
	aa := spatialmath.NewOrientationFromQuaternion(pose.Orientation).AxisAngles()

	printf(c.App.Writer, "camera %d (id %d, %s)", index, pose.EntryID, pose.Label)
	printf(c.App.Writer, "  position:    %s", formatVector(pose.Position))
	printf(c.App.Writer, "  orientation: %s", formatQuaternion(pose.Orientation))
	printf(c.App.Writer, "  euler:       %s", formatEuler(pose.Orientation))
	printf(c.App.Writer, "  axis angle:  %.2f deg about (%.3f, %.3f, %.3f)",
		spatialmath.RadToDeg(aa.Theta), aa.RX, aa.RY, aa.RZ)
	printf(c.App.Writer, "  fov:         %.2f vertical, %.2f horizontal",
		entry.Intrinsics.VerticalFOV(), entry.Intrinsics.HorizontalFOV())
	if pose.Degenerate {
		printf(c.App.Writer, "  forward and up were parallel, roll is a fallback")
	}
}

// stdoutCamera is the camera the CLI drives: every pose set on it is printed.
type stdoutCamera struct {
	w io.Writer
}

func (cam stdoutCamera) SetWorldPosition(position r3.Vector) {
	printf(cam.w, "position %s", formatVector(position))
}

func (cam stdoutCamera) SetWorldOrientation(orientation quat.Number) {
	printf(cam.w, "orientation %s", formatQuaternion(orientation))
}

// ApplyAction is the corresponding Action for 'apply'.
func ApplyAction(c *cli.Context) error {
	return withClient(func(c *cli.Context, client *poseClient) error {
		return client.applyAction(c)
	})(c)
}

func (pc *poseClient) applyAction(c *cli.Context) error {
	index := pc.index(c)
	camera := stdoutCamera{c.App.Writer}
	return pc.run(c, func(*poseset.Snapshot) {
		if !pc.set.Apply(c.Context, index, pc.conversion, camera) {
			warningf(c.App.ErrWriter, "camera %d not applied", index)
		}
	})
}

// exportedPose is the JSON form of one converted camera.
type exportedPose struct {
	ID          int        `json:"id"`
	Label       string     `json:"label"`
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation_wxyz"`
	Degenerate  bool       `json:"degenerate,omitempty"`
	VerticalFOV float64    `json:"vertical_fov,omitempty"`
}

// ExportAction is the corresponding Action for 'export'.
func ExportAction(c *cli.Context) error {
	return withClient(func(c *cli.Context, client *poseClient) error {
		return client.exportAction(c)
	})(c)
}

func (pc *poseClient) exportAction(c *cli.Context) (err error) {
	snap := pc.load(c.Context)
	poses, err := pc.set.Poses(c.Context, pc.conversion)
	if err != nil {
		return err
	}
	entries := snap.Entries()
	out := lo.Map(poses, func(pose transform.EngineCameraPose, i int) exportedPose {
		return toExported(pose, entries[i])
	})

	w := c.App.Writer
	if path := c.Path(exportFlagOut); path != "" {
		//nolint:gosec
		f, createErr := os.Create(path)
		if createErr != nil {
			return errors.Wrap(createErr, "creating export file")
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toExported(pose transform.EngineCameraPose, entry posefile.PoseEntry) exportedPose {
	q := pose.Orientation
	return exportedPose{
		ID:          pose.EntryID,
		Label:       pose.Label,
		Position:    [3]float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
		Orientation: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Degenerate:  pose.Degenerate,
		VerticalFOV: entry.Intrinsics.VerticalFOV(),
	}
}

// WatchAction is the corresponding Action for 'watch'.
func WatchAction(c *cli.Context) error {
	return withClient(func(c *cli.Context, client *poseClient) error {
		return client.watchAction(c)
	})(c)
}

func (pc *poseClient) watchAction(c *cli.Context) error {
	apply := c.Bool(watchFlagApply)
	index := pc.index(c)
	camera := stdoutCamera{c.App.Writer}

	return pc.watch(c, func(snap *poseset.Snapshot) {
		summary := snap.Summary()
		printf(c.App.Writer, "reloaded %d camera poses, %d skipped", summary.Loaded, summary.Skipped)
		if apply {
			pc.set.Apply(c.Context, index, pc.conversion, camera)
		}
	})
}

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(c *cli.Context) error {
	out, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}
