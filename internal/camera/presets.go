package camera

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

type Preset string

const (
	Top       Preset = "top"
	Front     Preset = "front"
	Side      Preset = "side"
	Isometric Preset = "iso"
	Reset     Preset = "reset"
)

var Presets = []Preset{Top, Front, Side, Isometric, Reset}

func ParsePreset(s string) (Preset, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "isometric" {
		return Isometric, nil
	}
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown view preset %q", s)
}

// Apply snaps the camera to p. Named views only replace the rotation; Reset
// restores the whole default state.
func (s State) Apply(p Preset) State {
	switch p {
	case Top:
		s.Rotation = mgl64.Ident3()
	case Front:
		s.Rotation = mgl64.Rotate3DX(math.Pi / 2)
	case Side:
		s.Rotation = mgl64.Rotate3DY(math.Pi / 2)
	case Isometric:
		s.Rotation = rotation(math.Pi/4, math.Pi/4)
	case Reset:
		return Default()
	}
	return s
}

// Sensitivity converts drag distance into radians per pixel. Longer single
// steps get a slightly higher rate, up to Max.
type Sensitivity struct {
	Min  float64
	Max  float64
	Gain float64
}

var DefaultSensitivity = Sensitivity{Min: 0.006, Max: 0.012, Gain: 0.00002}

func (s Sensitivity) At(distance float64) float64 {
	return math.Min(s.Max, s.Min+distance*s.Gain)
}
