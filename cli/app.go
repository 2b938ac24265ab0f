// Package cli implements the camloader command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Global flags.
	generalFlagConfig  = "config"
	generalFlagDebug   = "debug"
	generalFlagCameras = "cameras"
	generalFlagScale   = "scale"
	generalFlagNoFlip  = "no-flip"
	generalFlagMode    = "mode"
	generalFlagStats   = "stats"

	// Command flags.
	poseFlagIndex  = "index"
	exportFlagOut  = "output"
	watchFlagApply = "apply"
)

var indexFlag = &cli.IntFlag{
	Name:    poseFlagIndex,
	Aliases: []string{"i"},
	Usage:   "position of the camera in the pose document, defaults to the configured selected_index",
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "camloader",
		Usage:           "load Gaussian Splatting camera poses and convert them for a left-handed Y-up engine",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    generalFlagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.PathFlag{
				Name:  generalFlagCameras,
				Usage: "pose document to read, overriding cameras_path",
			},
			&cli.StringFlag{
				Name:  generalFlagScale,
				Usage: "comma separated per axis translation scale, e.g. \"1,-1,1\"",
			},
			&cli.BoolFlag{
				Name:  generalFlagNoFlip,
				Usage: "keep the Y sign of the camera basis even when the scale reflects Y",
			},
			&cli.StringFlag{
				Name:  generalFlagMode,
				Usage: "orientation extraction: look_rotation or exact_matrix",
			},
			&cli.BoolFlag{
				Name:   generalFlagStats,
				Hidden: true,
				Usage:  "log diagnostic totals on exit",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list every camera pose in the document",
				Action: ListAction,
			},
			{
				Name:   "show",
				Usage:  "print the engine pose of one camera",
				Flags:  []cli.Flag{indexFlag},
				Action: ShowAction,
			},
			{
				Name:   "apply",
				Usage:  "apply one camera pose to the stdout camera",
				Flags:  []cli.Flag{indexFlag},
				Action: ApplyAction,
			},
			{
				Name:  "export",
				Usage: "write every converted camera pose as JSON",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    exportFlagOut,
						Aliases: []string{"o"},
						Usage:   "write to `FILE` instead of stdout",
					},
				},
				Action: ExportAction,
			},
			{
				Name:  "watch",
				Usage: "reload the pose document whenever it changes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  watchFlagApply,
						Usage: "apply the selected camera after every reload",
					},
					indexFlag,
				},
				Action: WatchAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: SchemaAction,
			},
		},
	}
}
