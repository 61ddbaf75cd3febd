package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/draw"
	gestures "github.com/ThatOtherAndrew/Layerview/internal/gesture"
	"github.com/ThatOtherAndrew/Layerview/internal/live"
	"github.com/ThatOtherAndrew/Layerview/internal/logging"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/opengl"
	"github.com/ThatOtherAndrew/Layerview/internal/viewer"
	"github.com/ThatOtherAndrew/Layerview/pkg/window"
)

var viewFlags struct {
	live bool
	url  string
	mode string
}

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open the interactive toolpath viewer",
	Long: `Open the interactive toolpath viewer.

Drag to rotate, ctrl-drag to pan, scroll to zoom.
Keys: 1 top, 2 front, 3 side, 4 iso, 0 reset view, M toggle 2D/3D,
space play/pause, R rewind, +/- zoom, Esc quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: Run,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	runtime.LockOSThread()

	f := viewCmd.Flags()
	f.BoolVar(&viewFlags.live, "live", false, "follow the print running on the printer backend")
	f.StringVar(&viewFlags.url, "url", "", "printer backend URL (default live.url)")
	f.StringVar(&viewFlags.mode, "mode", "", "initial view mode, 2d or 3d (default view.mode)")
}

var keyActions = map[glfw.Key]func(*viewer.Viewer){
	glfw.Key1:          func(v *viewer.Viewer) { v.Preset(camera.Top) },
	glfw.Key2:          func(v *viewer.Viewer) { v.Preset(camera.Front) },
	glfw.Key3:          func(v *viewer.Viewer) { v.Preset(camera.Side) },
	glfw.Key4:          func(v *viewer.Viewer) { v.Preset(camera.Isometric) },
	glfw.Key0:          func(v *viewer.Viewer) { v.Preset(camera.Reset) },
	glfw.KeyM:          (*viewer.Viewer).ToggleViewMode,
	glfw.KeySpace:      (*viewer.Viewer).TogglePlay,
	glfw.KeyR:          (*viewer.Viewer).ResetSimulation,
	glfw.KeyEqual:      (*viewer.Viewer).ZoomIn,
	glfw.KeyKPAdd:      (*viewer.Viewer).ZoomIn,
	glfw.KeyMinus:      (*viewer.Viewer).ZoomOut,
	glfw.KeyKPSubtract: (*viewer.Viewer).ZoomOut,
}

func Run(cmd *cobra.Command, args []string) error {
	opts := viewer.FromSettings(settings)
	if viewFlags.mode != "" {
		opts.Mode = models.ParseViewMode(viewFlags.mode)
	}
	v := viewer.New(opts, logging.Component(logger, "viewer"))
	defer v.Close()

	title := settings.Window.Title
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		v.Load(string(data))
		title = fmt.Sprintf("%s - %s", title, args[0])
	}

	win, err := window.New(settings.Window.Width, settings.Window.Height, title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	ctx := opengl.New()
	if err := ctx.InitGL(); err != nil {
		return fmt.Errorf("failed to initialise OpenGL: %w", err)
	}
	defer ctx.Delete()
	surface := draw.New(ctx)

	if viewFlags.live || settings.Live.Enabled {
		url := settings.Live.URL
		if viewFlags.url != "" {
			url = viewFlags.url
		}
		pollCtx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		poller := live.NewPoller(
			live.New(url, settings.Live.Timeout),
			settings.Live.PollInterval,
			logging.Component(logger, "live"),
		)
		go poller.Run(pollCtx)
		v.Follow(poller.Updates())
		logger.Info().Str("url", url).Msg("Following live prints")
	}

	var (
		wasPressed  bool
		lastW       int
		lastH       int
		shownStatus string
	)

	for !win.ShouldClose() {
		win.PollEvents()
		now := time.Now()

		for _, key := range win.Keys() {
			if key == glfw.KeyEscape || key == glfw.KeyQ {
				win.Close()
				continue
			}
			if action, ok := keyActions[key]; ok {
				action(v)
			}
		}

		x, y := win.GetCursorPos()
		ev := gestures.PointerEvent{X: x, Y: y, Time: now, Modifier: win.Modifier()}
		isPressed := win.GetMouseButton()
		switch {
		case isPressed && !wasPressed:
			v.PointerDown(ev)
		case isPressed:
			v.PointerMove(ev)
		case wasPressed:
			v.PointerUp(ev)
		}
		wasPressed = isPressed

		if s := win.Scroll(); s != 0 {
			v.Wheel(gestures.WheelEvent{DeltaY: s})
		}

		w, h := win.GetSize()
		resized := w != lastW || h != lastH
		if resized {
			fbw, fbh := win.GetFramebufferSize()
			surface.Resize(w, h, fbw, fbh)
			lastW, lastH = w, h
		}

		if st := statusLine(v); st != shownStatus {
			win.SetTitle(fmt.Sprintf("%s [%s]", title, st))
			shownStatus = st
		}

		if !v.Frame(now) && !resized {
			win.WaitEvents(1.0 / 60)
			continue
		}
		v.Render(surface)
		surface.Flush()
		win.SwapBuffers()
	}
	return nil
}

func statusLine(v *viewer.Viewer) string {
	st := v.LiveStatus()
	if st.Status.Active() {
		return fmt.Sprintf("%s %s %.0f%%", st.Status, st.Filename, st.Progress)
	}
	state := "paused"
	if v.Playing() {
		state = "playing"
	}
	return fmt.Sprintf("%s %s %.0f%%", v.ViewMode(), state, v.Progress()*100)
}
