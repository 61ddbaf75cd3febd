// Package gestures turns pointer and wheel input into camera motion: drag to
// rotate, modifier-drag or two fingers to pan, wheel to zoom, and a decaying
// spin after a fast 3D drag is released.
package gestures

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/schedule"
)

type State int

const (
	Idle State = iota
	Dragging
	Momentum
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Momentum:
		return "momentum"
	}
	return "idle"
}

type Mode int

const (
	Rotate Mode = iota
	Pan
)

type PointerEvent struct {
	X, Y float64
	Time time.Time
	// Modifier is true while ctrl or meta is held.
	Modifier bool
	// Touches is the number of touch points, 0 for a mouse.
	Touches int
}

type WheelEvent struct {
	DeltaY float64
}

// CameraStore owns the camera the controller drives.
type CameraStore interface {
	Camera() camera.State
	SetCamera(camera.State)
	ViewMode() models.ViewMode
}

type Config struct {
	PanDamping        float64
	Friction          float64
	MomentumThreshold float64
	MomentumEpsilon   float64
	MomentumSpeed     float64
	Rotate2DSpeed     float64
	ZoomSensitivity   float64
	Sensitivity       camera.Sensitivity
}

func DefaultConfig() Config {
	return Config{
		PanDamping:        0.8,
		Friction:          0.96,
		MomentumThreshold: 2,
		MomentumEpsilon:   0.001,
		MomentumSpeed:     0.004,
		Rotate2DSpeed:     0.008,
		ZoomSensitivity:   0.1,
		Sensitivity:       camera.DefaultSensitivity,
	}
}

type Controller struct {
	cfg   Config
	store CameraStore
	sched *schedule.Scheduler
	log   zerolog.Logger

	state    State
	mode     Mode
	startX   float64
	startY   float64
	snapshot camera.State
	vel      Velocity
	momentum *schedule.Task
}

func New(store CameraStore, sched *schedule.Scheduler, cfg Config, log zerolog.Logger) *Controller {
	return &Controller{
		cfg:   cfg,
		store: store,
		sched: sched,
		log:   log,
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) Velocity() Velocity { return c.vel }

// PointerDown starts a drag. A running spin is cancelled first.
func (c *Controller) PointerDown(e PointerEvent) {
	c.stopMomentum()

	c.state = Dragging
	c.startX, c.startY = e.X, e.Y
	c.snapshot = c.store.Camera()
	c.vel.Reset(e.X, e.Y, e.Time)
	c.mode = Rotate
	if e.Modifier || e.Touches > 1 {
		c.mode = Pan
	}
}

// PointerMove applies the offset from the drag start to the camera as it was
// when the drag began.
func (c *Controller) PointerMove(e PointerEvent) {
	if c.state != Dragging {
		return
	}
	dx, dy := e.X-c.startX, e.Y-c.startY
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return
	}
	c.vel.Sample(e.X, e.Y, e.Time)

	// A modifier or second touch mid-drag turns it into a pan for good.
	if e.Modifier || e.Touches > 1 {
		c.mode = Pan
	}
	if c.mode == Pan {
		cam := c.store.Camera()
		panned := c.snapshot.Pan(dx, dy, c.cfg.PanDamping)
		cam.OffsetX, cam.OffsetY = panned.OffsetX, panned.OffsetY
		c.store.SetCamera(cam)
		return
	}

	if c.store.ViewMode() == models.View2D {
		cam := c.store.Camera()
		cam.Rotation2D = c.snapshot.Rotate2DBy(dx * c.cfg.Rotate2DSpeed).Rotation2D
		c.store.SetCamera(cam)
		return
	}

	cam := c.store.Camera()
	cam.Rotation = c.snapshot.RotateBy(dx, dy, c.cfg.Sensitivity.At(math.Hypot(dx, dy))).Rotation
	c.store.SetCamera(cam)
}

// PointerUp ends the drag. A quick 3D rotate keeps spinning.
func (c *Controller) PointerUp(PointerEvent) {
	if c.state != Dragging {
		return
	}
	speed := c.vel.Speed()
	if speed > c.cfg.MomentumThreshold && c.mode == Rotate && c.store.ViewMode() == models.View3D {
		c.startMomentum()
		c.log.Debug().Float64("speed", speed).Msg("Momentum started")
	} else {
		c.vel.Stop()
		c.state = Idle
	}
	c.mode = Rotate
}

func (c *Controller) Wheel(e WheelEvent) {
	if math.IsNaN(e.DeltaY) {
		return
	}
	c.store.SetCamera(c.store.Camera().Zoom(e.DeltaY, c.cfg.ZoomSensitivity))
}

func (c *Controller) startMomentum() {
	c.state = Momentum
	c.momentum = c.sched.EveryFrame(func(time.Time) { c.step() })
}

// step is one frame of post-release spin.
func (c *Controller) step() {
	if c.vel.Speed() < c.cfg.MomentumEpsilon {
		c.stopMomentum()
		return
	}
	if c.store.ViewMode() == models.View3D {
		c.store.SetCamera(c.store.Camera().RotateBy(c.vel.X, c.vel.Y, c.cfg.MomentumSpeed))
	}
	c.vel.Decay(c.cfg.Friction)
}

func (c *Controller) stopMomentum() {
	if c.momentum != nil {
		c.momentum.Stop()
		c.momentum = nil
	}
	if c.state == Momentum {
		c.state = Idle
		c.vel.Stop()
	}
}

// Close cancels any running spin.
func (c *Controller) Close() {
	c.stopMomentum()
	c.state = Idle
}
