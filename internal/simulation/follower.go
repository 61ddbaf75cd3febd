package simulation

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const settleEpsilon = 1e-4

// Follower eases a displayed progress value toward a reported target with a
// critically damped spring, so a coarse live progress feed moves smoothly.
type Follower struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
	smooth bool
}

// NewFollower builds a follower stepped fps times a second. frequency is the
// spring's angular frequency; a damping ratio of 1 never overshoots. With
// smooth false the follower jumps straight to each target.
func NewFollower(fps int, frequency float64, smooth bool) *Follower {
	if fps <= 0 {
		fps = 60
	}
	return &Follower{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, 1.0),
		smooth: smooth,
	}
}

func (f *Follower) SetTarget(p float64) {
	f.target = Clamp(p)
	if !f.smooth {
		f.Snap(f.target)
	}
}

// Snap jumps to p with no easing.
func (f *Follower) Snap(p float64) {
	f.pos = Clamp(p)
	f.target = f.pos
	f.vel = 0
}

// Update advances one frame and returns the new value.
func (f *Follower) Update() float64 {
	if f.Settled() {
		f.pos, f.vel = f.target, 0
		return f.pos
	}
	pos, vel := f.spring.Update(f.pos, f.vel, f.target)
	if math.IsNaN(pos) || math.IsNaN(vel) {
		f.Snap(f.target)
		return f.pos
	}
	f.pos, f.vel = Clamp(pos), vel
	return f.pos
}

func (f *Follower) Value() float64 { return f.pos }

func (f *Follower) Target() float64 { return f.target }

func (f *Follower) Settled() bool {
	return math.Abs(f.target-f.pos) < settleEpsilon && math.Abs(f.vel) < settleEpsilon
}
