package gestures

import (
	"math"
	"time"
)

// frameMillis normalises velocity to pixels per 60 Hz frame.
const frameMillis = 16

// velocityBlend is the weight of a new sample in the running average.
const velocityBlend = 0.3

// Velocity is an exponentially smoothed pointer velocity in pixels per frame.
type Velocity struct {
	X, Y float64

	lastX, lastY float64
	last         time.Time
}

// Reset zeroes the estimate and anchors it at (x, y, t).
func (v *Velocity) Reset(x, y float64, t time.Time) {
	*v = Velocity{lastX: x, lastY: y, last: t}
}

// Sample folds a new pointer position into the estimate. An event with no
// forward time step is dropped and its motion counts toward the next sample.
func (v *Velocity) Sample(x, y float64, t time.Time) {
	dt := float64(t.Sub(v.last)) / float64(time.Millisecond)
	if !(dt > 0) {
		return
	}
	nx := (x - v.lastX) / dt * frameMillis
	ny := (y - v.lastY) / dt * frameMillis
	if math.IsNaN(nx) || math.IsInf(nx, 0) || math.IsNaN(ny) || math.IsInf(ny, 0) {
		return
	}
	v.X = v.X*(1-velocityBlend) + nx*velocityBlend
	v.Y = v.Y*(1-velocityBlend) + ny*velocityBlend
	v.lastX, v.lastY, v.last = x, y, t
}

func (v Velocity) Speed() float64 {
	return math.Hypot(v.X, v.Y)
}

// Decay scales the velocity by friction.
func (v *Velocity) Decay(friction float64) {
	v.X *= friction
	v.Y *= friction
}

func (v *Velocity) Stop() {
	v.X, v.Y = 0, 0
}
