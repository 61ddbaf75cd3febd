// Package viewer ties the parser, camera, gestures, renderer and simulation
// clock together behind a host-agnostic set of controls. A host (a window, a
// snapshot command, a test) forwards input, calls Frame once per frame and
// Render when Frame reports a change.
//
// A Viewer is not safe for concurrent use. Live print updates arrive on a
// channel and are applied inside Frame.
package viewer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/gcode"
	gestures "github.com/ThatOtherAndrew/Layerview/internal/gesture"
	"github.com/ThatOtherAndrew/Layerview/internal/live"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/render"
	"github.com/ThatOtherAndrew/Layerview/internal/schedule"
	"github.com/ThatOtherAndrew/Layerview/internal/simulation"
)

type Viewer struct {
	log zerolog.Logger

	sched    *schedule.Scheduler
	renderer *render.Renderer
	gesture  *gestures.Controller
	clock    *simulation.Clock
	follower *simulation.Follower

	cam      camera.State
	mode     models.ViewMode
	toolpath *models.Toolpath

	status  models.PrintStatus
	updates <-chan live.Update

	// version counts state changes; drawn is the version last rendered.
	version uint64
	drawn   uint64
}

func New(opts Options, log zerolog.Logger) *Viewer {
	v := &Viewer{
		log:      log,
		sched:    schedule.New(),
		renderer: render.New(opts.Render),
		cam:      camera.Default(),
		mode:     opts.Mode,
		status:   models.PrintStatus{Status: models.StatusIdle},
		version:  1,
	}
	v.gesture = gestures.New(v, v.sched, opts.Gesture, log.With().Str("component", "gesture").Logger())
	v.clock = simulation.NewClock(v.sched, opts.TickRate, opts.Duration)
	v.clock.OnChange = func(float64) { v.touch() }
	v.follower = simulation.NewFollower(followFPS, followFrequency, opts.Smoothing)
	v.sched.EveryFrame(func(time.Time) { v.stepFollower() })
	return v
}

func (v *Viewer) touch() { v.version++ }

func (v *Viewer) Camera() camera.State { return v.cam }

func (v *Viewer) SetCamera(c camera.State) {
	if c == v.cam {
		return
	}
	v.cam = c
	v.touch()
}

func (v *Viewer) ViewMode() models.ViewMode { return v.mode }

func (v *Viewer) Toolpath() *models.Toolpath { return v.toolpath }

// Load parses text, shows it unprinted and returns the toolpath.
func (v *Viewer) Load(text string) *models.Toolpath {
	tp := gcode.Load(text)
	v.SetToolpath(tp)
	return tp
}

// SetToolpath replaces the model. The camera is kept and the simulation
// rewinds.
func (v *Viewer) SetToolpath(tp *models.Toolpath) {
	if tp == nil {
		tp = &models.Toolpath{}
	}
	v.toolpath = tp
	v.clock.Reset()
	v.touch()

	ev := v.log.Info().
		Int("moves", tp.Len()).
		Int("extrusions", tp.Extrusions).
		Int("layers", len(tp.Layers))
	if n := len(tp.Layers); n > 0 {
		ev = ev.Float64("top", tp.Layers[n-1])
	}
	if tp.Malformed > 0 {
		ev = ev.Int("malformed", tp.Malformed)
	}
	ev.Msg("Loaded toolpath")
}

// Progress is the fraction shown as printed: the live print's while one is
// active, the simulation clock's otherwise.
func (v *Viewer) Progress() float64 {
	if v.status.Status.Active() {
		return v.follower.Value()
	}
	return v.clock.Progress()
}

func (v *Viewer) Playing() bool { return v.clock.Playing() }

// LiveStatus is the last status received from the printer, idle if none.
func (v *Viewer) LiveStatus() models.PrintStatus { return v.status }

func (v *Viewer) GestureState() gestures.State { return v.gesture.State() }

func (v *Viewer) SetViewMode(m models.ViewMode) {
	if m == v.mode {
		return
	}
	v.mode = m
	v.touch()
}

func (v *Viewer) ToggleViewMode() {
	if v.mode == models.View2D {
		v.SetViewMode(models.View3D)
	} else {
		v.SetViewMode(models.View2D)
	}
}

func (v *Viewer) Preset(p camera.Preset) {
	v.SetCamera(v.cam.Apply(p))
}

func (v *Viewer) ZoomIn() { v.SetCamera(v.cam.ZoomBy(ZoomInFactor)) }

func (v *Viewer) ZoomOut() { v.SetCamera(v.cam.ZoomBy(ZoomOutFactor)) }

// Play, Pause, TogglePlay, ResetSimulation and SetProgress drive the
// simulation clock. While a live print is followed they are ignored.
func (v *Viewer) Play() {
	if v.following("play") {
		return
	}
	v.clock.Play()
	v.touch()
}

func (v *Viewer) Pause() {
	v.clock.Pause()
	v.touch()
}

func (v *Viewer) TogglePlay() {
	if v.clock.Playing() {
		v.Pause()
	} else {
		v.Play()
	}
}

func (v *Viewer) ResetSimulation() {
	if v.following("reset") {
		return
	}
	v.clock.Reset()
	v.touch()
}

func (v *Viewer) SetProgress(p float64) {
	if v.following("seek") {
		return
	}
	v.clock.SetProgress(p)
}

func (v *Viewer) following(action string) bool {
	if !v.status.Status.Active() {
		return false
	}
	v.log.Debug().Str("action", action).Msg("Ignored while following a live print")
	return true
}

func (v *Viewer) PointerDown(e gestures.PointerEvent) { v.gesture.PointerDown(e) }

func (v *Viewer) PointerMove(e gestures.PointerEvent) { v.gesture.PointerMove(e) }

func (v *Viewer) PointerUp(e gestures.PointerEvent) { v.gesture.PointerUp(e) }

func (v *Viewer) Wheel(e gestures.WheelEvent) { v.gesture.Wheel(e) }

// Follow makes Frame apply updates from a live poller.
func (v *Viewer) Follow(updates <-chan live.Update) {
	v.updates = updates
}

// Frame advances everything time-driven to now and reports whether the
// scene changed since the last Render.
func (v *Viewer) Frame(now time.Time) bool {
	v.drainLive()
	v.sched.Tick(now)
	return v.version != v.drawn
}

func (v *Viewer) Render(surf render.Surface) {
	v.renderer.Render(surf, v.toolpath, v.cam, v.Progress(), v.mode)
	v.drawn = v.version
}

// Close stops momentum, the clock and every scheduled task.
func (v *Viewer) Close() {
	v.gesture.Close()
	v.clock.Pause()
	v.sched.Close()
}

func (v *Viewer) drainLive() {
	for v.updates != nil {
		select {
		case u, ok := <-v.updates:
			if !ok {
				v.updates = nil
				v.applyLive(live.Update{Status: models.PrintStatus{Status: models.StatusIdle}})
				return
			}
			v.applyLive(u)
		default:
			return
		}
	}
}

func (v *Viewer) applyLive(u live.Update) {
	if u.Toolpath != nil {
		v.SetToolpath(u.Toolpath)
		v.follower.Snap(0)
	}

	was := v.status.Status.Active()
	v.status = u.Status
	active := u.Status.Status.Active()

	switch {
	case active:
		if !was {
			v.log.Info().Str("file", u.Status.Filename).Msg("Live print started")
			v.clock.Pause()
			v.follower.Snap(v.clock.Progress())
		}
		v.follower.SetTarget(u.Status.Fraction())
	case was:
		v.log.Info().Msg("Live print ended")
		v.clock.SetProgress(v.follower.Value())
	}
	v.touch()
}

func (v *Viewer) stepFollower() {
	if !v.status.Status.Active() || v.follower.Settled() {
		return
	}
	before := v.follower.Value()
	if v.follower.Update() != before {
		v.touch()
	}
}
