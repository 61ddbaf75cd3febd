// Package simulation animates the fraction of a toolpath shown as printed.
package simulation

import (
	"time"

	"github.com/ThatOtherAndrew/Layerview/internal/schedule"
)

const (
	DefaultTickRate = 20
	DefaultDuration = 5 * time.Second

	// doneEpsilon absorbs the rounding left after summing many steps.
	doneEpsilon = 1e-9
)

// Clock steps progress from 0 to 1 at a fixed cadence while playing. It is
// Stopped or Playing; reaching 1 stops it.
type Clock struct {
	sched    *schedule.Scheduler
	interval time.Duration
	step     float64
	progress float64
	task     *schedule.Task

	// OnChange, if set, is called after every progress change.
	OnChange func(progress float64)
}

// NewClock returns a stopped clock that runs tickRate times a second and
// covers the whole toolpath in duration.
func NewClock(sched *schedule.Scheduler, tickRate float64, duration time.Duration) *Clock {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Clock{
		sched:    sched,
		interval: time.Duration(float64(time.Second) / tickRate),
		step:     1 / (duration.Seconds() * tickRate),
	}
}

func (c *Clock) Progress() float64 { return c.progress }

func (c *Clock) Playing() bool { return c.task.Running() }

// Play starts the ticker. Playing from the end starts over.
func (c *Clock) Play() {
	if c.Playing() {
		return
	}
	if c.progress >= 1 {
		c.set(0)
	}
	c.task = c.sched.Every(c.interval, func(time.Time) { c.tick() })
}

// Pause stops the ticker and keeps progress.
func (c *Clock) Pause() {
	c.task.Stop()
	c.task = nil
}

func (c *Clock) Toggle() {
	if c.Playing() {
		c.Pause()
	} else {
		c.Play()
	}
}

// Reset stops the ticker and rewinds to 0.
func (c *Clock) Reset() {
	c.Pause()
	c.set(0)
}

// SetProgress overrides progress from outside, for example from a live
// print. The ticker is left as it is.
func (c *Clock) SetProgress(p float64) {
	c.set(Clamp(p))
}

func (c *Clock) tick() {
	next := c.progress + c.step
	if next >= 1-doneEpsilon {
		c.set(1)
		c.Pause()
		return
	}
	c.set(next)
}

func (c *Clock) set(p float64) {
	if p == c.progress {
		return
	}
	c.progress = p
	if c.OnChange != nil {
		c.OnChange(p)
	}
}

// Clamp limits p to [0, 1]. NaN becomes 0.
func Clamp(p float64) float64 {
	switch {
	case !(p > 0):
		return 0
	case p > 1:
		return 1
	}
	return p
}
