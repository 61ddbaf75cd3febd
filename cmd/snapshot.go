package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/logging"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/raster"
	"github.com/ThatOtherAndrew/Layerview/internal/viewer"
)

var snapshotFlags struct {
	out      string
	width    int
	height   int
	progress float64
	mode     string
	preset   string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <file>",
	Short: "Render a G-code file to a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE:  snapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	f := snapshotCmd.Flags()
	f.StringVarP(&snapshotFlags.out, "out", "o", "", "output PNG path (default <file>.png)")
	f.IntVar(&snapshotFlags.width, "width", 0, "image width in pixels (default window.width)")
	f.IntVar(&snapshotFlags.height, "height", 0, "image height in pixels (default window.height)")
	f.Float64Var(&snapshotFlags.progress, "progress", 1, "fraction of moves drawn as printed, 0 to 1")
	f.StringVar(&snapshotFlags.mode, "mode", "", "view mode, 2d or 3d (default view.mode)")
	f.StringVar(&snapshotFlags.preset, "preset", "", "camera preset: top, front, side, iso or reset")
}

func snapshot(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	opts := viewer.FromSettings(settings)
	if m := snapshotFlags.mode; m != "" {
		if !strings.EqualFold(m, "2d") && !strings.EqualFold(m, "3d") {
			return fmt.Errorf("unknown view mode %q", m)
		}
		opts.Mode = models.ParseViewMode(m)
	}

	v := viewer.New(opts, logging.Component(logger, "viewer"))
	defer v.Close()
	v.Load(string(data))

	if snapshotFlags.preset != "" {
		p, err := camera.ParsePreset(snapshotFlags.preset)
		if err != nil {
			return err
		}
		v.Preset(p)
	}
	v.SetProgress(snapshotFlags.progress)

	width, height := snapshotFlags.width, snapshotFlags.height
	if width <= 0 {
		width = settings.Window.Width
	}
	if height <= 0 {
		height = settings.Window.Height
	}

	out := snapshotFlags.out
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
	}

	canvas := raster.New(width, height)
	v.Render(canvas)
	if err := canvas.SavePNG(out); err != nil {
		return err
	}
	logger.Info().Str("path", out).Int("width", width).Int("height", height).Msg("Wrote snapshot")
	return nil
}
