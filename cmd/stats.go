package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/gcode"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/render"
	"github.com/ThatOtherAndrew/Layerview/internal/viewer"
)

var statsProgress float64

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Print toolpath statistics for a G-code file",
	Args:  cobra.ExactArgs(1),
	RunE:  printStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Float64Var(&statsProgress, "progress", 1, "fraction of moves counted as printed in the draw summary")
}

func printStats(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	tp, err := gcode.ParseReader(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:        %s\n", args[0])
	fmt.Fprintf(out, "Lines:       %d\n", tp.Lines)
	fmt.Fprintf(out, "Moves:       %d\n", tp.Len())
	fmt.Fprintf(out, "Extrusions:  %d\n", tp.Extrusions)
	fmt.Fprintf(out, "Travel:      %d\n", tp.Len()-tp.Extrusions)
	if n := len(tp.Layers); n > 0 {
		fmt.Fprintf(out, "Layers:      %d (%.3f to %.3f)\n", n, tp.Layers[0], tp.Layers[n-1])
	} else {
		fmt.Fprintln(out, "Layers:      0")
	}
	if tp.Malformed > 0 {
		fmt.Fprintf(out, "Malformed:   %d\n", tp.Malformed)
	}
	if tp.Len() > 0 {
		b := tp.Bounds()
		fmt.Fprintf(out, "Size:        %.2f x %.2f x %.2f\n", b.MaxX-b.MinX, b.MaxY-b.MinY, b.MaxZ-b.MinZ)
	}

	rec := render.NewRecorder(settings.Window.Width, settings.Window.Height)
	r := render.New(viewer.FromSettings(settings).Render)
	r.Render(rec, tp, camera.Default(), statsProgress, models.View3D)

	fmt.Fprintf(out, "Drawn at %.0f%%:\n", statsProgress*100)
	for _, style := range []render.Style{render.Completed, render.Extrusion, render.Travel, render.Grid} {
		fmt.Fprintf(out, "  %-10s %d\n", style, rec.Count(style))
	}
	return nil
}
