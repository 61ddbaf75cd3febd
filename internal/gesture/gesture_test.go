package gestures

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/schedule"
)

type store struct {
	cam  camera.State
	mode models.ViewMode
	sets int
}

func (s *store) Camera() camera.State { return s.cam }

func (s *store) SetCamera(c camera.State) { s.cam = c; s.sets++ }

func (s *store) ViewMode() models.ViewMode { return s.mode }

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

func setup(mode models.ViewMode) (*Controller, *store, *schedule.Scheduler) {
	st := &store{cam: camera.Default(), mode: mode}
	sched := schedule.New()
	return New(st, sched, DefaultConfig(), zerolog.Nop()), st, sched
}

// flick drags quickly to the right and releases.
func flick(c *Controller, mods bool, touches int) {
	flickFrom(c, PointerEvent{Modifier: mods, Touches: touches}, mods, touches)
}

// flickFrom is flick with a separately chosen pointer-down event.
func flickFrom(c *Controller, down PointerEvent, mods bool, touches int) {
	down.X, down.Y, down.Time = 100, 100, ms(0)
	c.PointerDown(down)
	for i := 1; i <= 5; i++ {
		c.PointerMove(PointerEvent{X: 100 + float64(i)*20, Y: 100, Time: ms(i * 16), Modifier: mods, Touches: touches})
	}
	c.PointerUp(PointerEvent{X: 200, Y: 100, Time: ms(96)})
}

func TestDragRotatesFromSnapshot(t *testing.T) {
	c, st, _ := setup(models.View3D)
	start := st.cam

	c.PointerDown(PointerEvent{X: 10, Y: 10, Time: ms(0)})
	assert.Equal(t, Dragging, c.State())
	assert.Equal(t, Rotate, c.Mode())

	c.PointerMove(PointerEvent{X: 30, Y: 10, Time: ms(16)})
	c.PointerMove(PointerEvent{X: 60, Y: 10, Time: ms(32)})

	want := start.RotateBy(50, 0, DefaultConfig().Sensitivity.At(50))
	assert.True(t, st.cam.Rotation.ApproxEqualThreshold(want.Rotation, 1e-12))
	assert.Equal(t, start.Scale, st.cam.Scale)
}

func TestSlowReleaseGoesIdle(t *testing.T) {
	c, _, sched := setup(models.View3D)

	c.PointerDown(PointerEvent{X: 0, Y: 0, Time: ms(0)})
	c.PointerMove(PointerEvent{X: 1, Y: 0, Time: ms(500)})
	c.PointerUp(PointerEvent{Time: ms(600)})

	assert.Equal(t, Idle, c.State())
	assert.Zero(t, c.Velocity().Speed())
	assert.Zero(t, sched.Len())
}

func TestFlickStartsMomentumThatEnds(t *testing.T) {
	c, st, sched := setup(models.View3D)
	flick(c, false, 0)

	require.Equal(t, Momentum, c.State())
	require.Greater(t, c.Velocity().Speed(), DefaultConfig().MomentumThreshold)
	assert.Equal(t, 1, sched.Len())

	before := st.cam.Rotation
	ticks := 0
	for c.State() == Momentum {
		sched.Tick(ms(100 + ticks*16))
		ticks++
		require.Less(t, ticks, 1000, "momentum must terminate")
	}
	assert.NotEqual(t, before, st.cam.Rotation)
	assert.Equal(t, Idle, c.State())
	assert.Zero(t, sched.Len())

	// 0.96^n * v0 < 0.001 bounds the tick count.
	v0 := 20.0 / 16 * 16
	bound := int(math.Ceil(math.Log(0.001/v0)/math.Log(0.96))) + 2
	assert.LessOrEqual(t, ticks, bound)
}

func TestPointerDownCancelsMomentum(t *testing.T) {
	c, st, sched := setup(models.View3D)
	flick(c, false, 0)
	require.Equal(t, Momentum, c.State())

	sched.Tick(ms(100))
	c.PointerDown(PointerEvent{X: 5, Y: 5, Time: ms(120)})
	assert.Equal(t, Dragging, c.State())
	assert.Zero(t, c.Velocity().Speed())

	held := st.cam
	sched.Tick(ms(140))
	sched.Tick(ms(160))
	assert.Equal(t, held, st.cam)
	assert.Zero(t, sched.Len())
}

func TestPanModes(t *testing.T) {
	cases := []struct {
		name    string
		down    PointerEvent
		mods    bool
		touches int
	}{
		{name: "modifier", down: PointerEvent{Modifier: true}, mods: true},
		{name: "two touches", down: PointerEvent{Touches: 2}, touches: 2},
		{name: "modifier after down", mods: true},
		{name: "second touch after down", down: PointerEvent{Touches: 1}, touches: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, st, sched := setup(models.View3D)
			rot := st.cam.Rotation

			flickFrom(c, tc.down, tc.mods, tc.touches)
			sched.Tick(ms(112))
			sched.Tick(ms(128))

			assert.Equal(t, Idle, c.State(), "pans never spin")
			assert.Zero(t, sched.Len())
			assert.Equal(t, rot, st.cam.Rotation)
			assert.InDelta(t, 100*0.8, st.cam.OffsetX, 1e-9)
			assert.InDelta(t, 0, st.cam.OffsetY, 1e-9)
		})
	}
}

func TestDrag2DTurnsPlane(t *testing.T) {
	c, st, sched := setup(models.View2D)
	rot := st.cam.Rotation

	flick(c, false, 0)

	assert.InDelta(t, 100*0.008, st.cam.Rotation2D, 1e-12)
	assert.Equal(t, rot, st.cam.Rotation)
	assert.Equal(t, Idle, c.State(), "no momentum in 2D")
	assert.Zero(t, sched.Len())
}

func TestMoveWithoutDownIgnored(t *testing.T) {
	c, st, _ := setup(models.View3D)
	c.PointerMove(PointerEvent{X: 50, Y: 50, Time: ms(10)})
	c.PointerUp(PointerEvent{Time: ms(20)})
	assert.Zero(t, st.sets)
	assert.Equal(t, Idle, c.State())
}

func TestZeroTimeDeltaIsNotSampled(t *testing.T) {
	c, st, _ := setup(models.View3D)

	c.PointerDown(PointerEvent{X: 0, Y: 0, Time: ms(0)})
	c.PointerMove(PointerEvent{X: 40, Y: 0, Time: ms(0)})
	c.PointerMove(PointerEvent{X: 80, Y: 0, Time: ms(-5)})

	v := c.Velocity()
	assert.Zero(t, v.Speed())
	for _, x := range st.cam.Rotation {
		assert.False(t, math.IsNaN(x) || math.IsInf(x, 0))
	}

	c.PointerMove(PointerEvent{X: 80, Y: 0, Time: ms(16)})
	v = c.Velocity()
	assert.InDelta(t, 80*0.3, v.X, 1e-9, "skipped motion lands in the next good sample")
}

func TestNaNPointerIgnored(t *testing.T) {
	c, st, _ := setup(models.View3D)
	before := st.cam

	c.PointerDown(PointerEvent{X: 0, Y: 0, Time: ms(0)})
	c.PointerMove(PointerEvent{X: math.NaN(), Y: 0, Time: ms(16)})
	assert.Equal(t, before, st.cam)
}

func TestWheelZoom(t *testing.T) {
	c, st, _ := setup(models.View3D)

	c.Wheel(WheelEvent{DeltaY: 120})
	assert.InDelta(t, 0.9, st.cam.Scale, 1e-12)
	c.Wheel(WheelEvent{DeltaY: -120})
	assert.InDelta(t, 0.99, st.cam.Scale, 1e-12)

	for range 500 {
		c.Wheel(WheelEvent{DeltaY: -1})
	}
	assert.Equal(t, float64(camera.MaxScale), st.cam.Scale)

	c.Wheel(WheelEvent{DeltaY: math.NaN()})
	assert.Equal(t, float64(camera.MaxScale), st.cam.Scale)
}

func TestMomentumKeepsOrthonormal(t *testing.T) {
	c, st, sched := setup(models.View3D)
	for i := range 20 {
		flick(c, false, 0)
		for j := range 30 {
			sched.Tick(ms(i*1000 + j*16))
		}
	}
	m := st.cam.Rotation
	for i := range 3 {
		assert.InDelta(t, 1, m.Row(i).Len(), 1e-9)
	}
	assert.InDelta(t, 0, m.Row(0).Dot(m.Row(1)), 1e-9)
	assert.True(t, mgl64.FloatEqualThreshold(m.Det(), 1, 1e-9))
}

func TestClose(t *testing.T) {
	c, _, sched := setup(models.View3D)
	flick(c, false, 0)
	require.Equal(t, Momentum, c.State())

	c.Close()
	assert.Equal(t, Idle, c.State())
	assert.Zero(t, sched.Len())
	c.Close()
}

func TestVelocitySmoothing(t *testing.T) {
	var v Velocity
	v.Reset(0, 0, ms(0))
	v.Sample(16, 0, ms(16))
	assert.InDelta(t, 16*0.3, v.X, 1e-12)
	v.Sample(32, 0, ms(32))
	assert.InDelta(t, 16*0.3*0.7+16*0.3, v.X, 1e-12)

	v.Decay(0.5)
	assert.InDelta(t, (16*0.3*0.7+16*0.3)/2, v.X, 1e-12)
	v.Stop()
	assert.Zero(t, v.Speed())
}
