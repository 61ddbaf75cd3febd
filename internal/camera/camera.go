// Package camera holds the orbit camera used to look at a toolpath.
//
// State is a plain value. Every operation returns a new State and leaves the
// receiver alone, so callers can snapshot a camera by copying it.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

const (
	MinScale = 0.1
	MaxScale = 10

	// DefaultDistance is the eye distance used for the perspective divide.
	DefaultDistance = 400
)

type State struct {
	// Rotation maps model space into view space. It is kept orthonormal.
	Rotation   mgl64.Mat3
	Scale      float64
	OffsetX    float64
	OffsetY    float64
	Rotation2D float64
}

// Default is the start-up view: tilted 30° and turned 45°.
func Default() State {
	return State{
		Rotation: rotation(mgl64.DegToRad(30), mgl64.DegToRad(45)),
		Scale:    1,
	}
}

// rotation composes a pitch about X with a yaw about Y, pitch applied last.
func rotation(pitch, yaw float64) mgl64.Mat3 {
	return mgl64.Rotate3DX(pitch).Mul3(mgl64.Rotate3DY(yaw))
}

// RotateBy turns the camera by a pointer delta in pixels. Horizontal motion
// yaws, vertical motion pitches, and the increment is applied on top of the
// current orientation so drags compose like a trackball.
func (s State) RotateBy(dx, dy, sensitivity float64) State {
	inc := rotation(-dy*sensitivity, dx*sensitivity)
	next := orthonormalize(inc.Mul3(s.Rotation))
	if !finiteMat(next) {
		return s
	}
	s.Rotation = next
	return s
}

// Pan shifts the view by a screen delta scaled by damping.
func (s State) Pan(dx, dy, damping float64) State {
	x, y := s.OffsetX+dx*damping, s.OffsetY+dy*damping
	if finite(x) && finite(y) {
		s.OffsetX, s.OffsetY = x, y
	}
	return s
}

// Rotate2DBy turns the top-down view by delta radians.
func (s State) Rotate2DBy(delta float64) State {
	if r := s.Rotation2D + delta; finite(r) {
		s.Rotation2D = r
	}
	return s
}

// Zoom applies one wheel notch. Scrolling down (positive deltaY) zooms out;
// a zero delta leaves the scale alone.
func (s State) Zoom(deltaY, sensitivity float64) State {
	switch {
	case deltaY > 0:
		return s.ZoomBy(1 - sensitivity)
	case deltaY < 0:
		return s.ZoomBy(1 + sensitivity)
	}
	return s
}

// ZoomBy multiplies the scale by factor and clamps it to [MinScale, MaxScale].
func (s State) ZoomBy(factor float64) State {
	next := s.Scale * factor
	if !finite(next) {
		return s
	}
	s.Scale = ClampScale(next)
	return s
}

func ClampScale(v float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, v))
}

// Projection is a point in screen units relative to the view centre.
type Projection struct {
	X, Y  float64
	Depth float64
}

// Project maps a model-space point (already centred on the model) onto the
// screen. base is the fit-to-viewport scale; the camera's own Scale is
// applied on top. In 2D mode Z is ignored, Y is flipped so it points up and
// the result is turned by Rotation2D.
func (s State) Project(p mgl64.Vec3, mode models.ViewMode, distance, base float64) Projection {
	scale := base * s.Scale
	if mode == models.View2D {
		x, y := s.Turn2D(p.X()*scale, -p.Y()*scale)
		return Projection{X: x, Y: y}
	}

	r := s.Rotation.Mul3x1(p)
	// Points at or behind the eye would blow up the divide.
	denom := math.Max(distance+r.Z(), distance*0.01)
	f := distance / denom
	return Projection{
		X:     r.X() * f * scale,
		Y:     r.Y() * f * scale,
		Depth: r.Z(),
	}
}

// Turn2D rotates a screen vector by Rotation2D.
func (s State) Turn2D(x, y float64) (float64, float64) {
	sin, cos := math.Sincos(s.Rotation2D)
	return x*cos - y*sin, x*sin + y*cos
}

// orthonormalize re-runs Gram-Schmidt over the rows so rounding error from
// long drag sessions never accumulates into skew.
func orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	r0 := m.Row(0).Normalize()
	r1 := m.Row(1)
	r1 = r1.Sub(r0.Mul(r0.Dot(r1))).Normalize()
	r2 := r0.Cross(r1)
	return mgl64.Mat3FromRows(r0, r1, r2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteMat(m mgl64.Mat3) bool {
	for _, v := range m {
		if !finite(v) {
			return false
		}
	}
	return true
}
