package viewer

import (
	"time"

	"github.com/ThatOtherAndrew/Layerview/internal/camera"
	"github.com/ThatOtherAndrew/Layerview/internal/config"
	gestures "github.com/ThatOtherAndrew/Layerview/internal/gesture"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
	"github.com/ThatOtherAndrew/Layerview/internal/render"
	"github.com/ThatOtherAndrew/Layerview/internal/simulation"
)

const (
	ZoomInFactor  = 1.2
	ZoomOutFactor = 0.8

	followFPS       = 60
	followFrequency = 6.0
)

type Options struct {
	Mode     models.ViewMode
	Render   render.Options
	Gesture  gestures.Config
	TickRate float64
	Duration time.Duration
	// Smoothing eases live progress instead of jumping to each report.
	Smoothing bool
}

func DefaultOptions() Options {
	return Options{
		Mode:      models.View3D,
		Render:    render.DefaultOptions(),
		Gesture:   gestures.DefaultConfig(),
		TickRate:  simulation.DefaultTickRate,
		Duration:  simulation.DefaultDuration,
		Smoothing: true,
	}
}

// FromSettings maps loaded settings onto viewer options.
func FromSettings(s *config.Settings) Options {
	g := s.Gesture
	return Options{
		Mode: models.ParseViewMode(s.View.Mode),
		Render: render.Options{
			Distance:   s.View.Distance,
			AxisLength: s.View.AxisLength,
			GridSize:   s.View.GridSize,
			FitMargin:  s.View.FitMargin,
		},
		Gesture: gestures.Config{
			PanDamping:        g.PanDamping,
			Friction:          g.Friction,
			MomentumThreshold: g.MomentumThreshold,
			MomentumEpsilon:   g.MomentumEpsilon,
			MomentumSpeed:     g.MomentumSpeed,
			Rotate2DSpeed:     g.Rotate2DSpeed,
			ZoomSensitivity:   g.ZoomSensitivity,
			Sensitivity: camera.Sensitivity{
				Min:  g.MinSensitivity,
				Max:  g.MaxSensitivity,
				Gain: g.SensitivityGain,
			},
		},
		TickRate:  s.Simulation.TickRate,
		Duration:  s.Simulation.Duration,
		Smoothing: s.Live.Smoothing,
	}
}
