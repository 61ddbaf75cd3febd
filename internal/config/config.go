package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrInvalidSetting = errors.New("invalid setting")

type Settings struct {
	LogLevel   string     `mapstructure:"logLevel"`
	Window     Window     `mapstructure:"window"`
	View       View       `mapstructure:"view"`
	Gesture    Gesture    `mapstructure:"gesture"`
	Simulation Simulation `mapstructure:"simulation"`
	Live       Live       `mapstructure:"live"`
}

type Window struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type View struct {
	Mode       string  `mapstructure:"mode"`
	Distance   float64 `mapstructure:"distance"`
	AxisLength float64 `mapstructure:"axisLength"`
	GridSize   float64 `mapstructure:"gridSize"`
	FitMargin  float64 `mapstructure:"fitMargin"`
}

type Gesture struct {
	PanDamping        float64 `mapstructure:"panDamping"`
	Friction          float64 `mapstructure:"friction"`
	MomentumThreshold float64 `mapstructure:"momentumThreshold"`
	MomentumEpsilon   float64 `mapstructure:"momentumEpsilon"`
	MomentumSpeed     float64 `mapstructure:"momentumSpeed"`
	Rotate2DSpeed     float64 `mapstructure:"rotate2DSpeed"`
	ZoomSensitivity   float64 `mapstructure:"zoomSensitivity"`
	MinSensitivity    float64 `mapstructure:"minSensitivity"`
	MaxSensitivity    float64 `mapstructure:"maxSensitivity"`
	SensitivityGain   float64 `mapstructure:"sensitivityGain"`
}

type Simulation struct {
	TickRate float64       `mapstructure:"tickRate"`
	Duration time.Duration `mapstructure:"duration"`
}

type Live struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	Smoothing    bool          `mapstructure:"smoothing"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"logLevel": "info",

	"window.width":  1280,
	"window.height": 800,
	"window.title":  "Layerview",

	"view.mode":       "3d",
	"view.distance":   400.0,
	"view.axisLength": 30.0,
	"view.gridSize":   10.0,
	"view.fitMargin":  1.2,

	"gesture.panDamping":        0.8,
	"gesture.friction":          0.96,
	"gesture.momentumThreshold": 2.0,
	"gesture.momentumEpsilon":   0.001,
	"gesture.momentumSpeed":     0.004,
	"gesture.rotate2DSpeed":     0.008,
	"gesture.zoomSensitivity":   0.1,
	"gesture.minSensitivity":    0.006,
	"gesture.maxSensitivity":    0.012,
	"gesture.sensitivityGain":   0.00002,

	"simulation.tickRate": 20.0,
	"simulation.duration": "5s",

	"live.enabled":      false,
	"live.url":          "http://localhost:5000",
	"live.pollInterval": "2s",
	"live.smoothing":    true,
	"live.timeout":      "5s",
}

func GetSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "layerview")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

// newViper returns a viper seeded with defaults. With env set, LAYERVIEW_*
// variables override file values.
func newViper(env bool) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigType("json")
	if env {
		v.SetEnvPrefix("LAYERVIEW")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return v
}

// Default returns the built-in settings.
func Default() (*Settings, error) {
	s := &Settings{}
	if err := newViper(false).Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode default settings: %w", err)
	}
	return s, nil
}

// Load reads settings from path. A missing file is created with defaults;
// an unreadable one is reported and defaults are used. Unknown keys and out
// of range values are logged and replaced by defaults.
func Load(path string, log zerolog.Logger) (*Settings, error) {
	def, err := Default()
	if err != nil {
		return nil, err
	}

	v := newViper(true)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				log.Warn().Err(err).Str("path", path).Msg("Invalid settings file, using defaults")
				return def, nil
			}
			return nil, fmt.Errorf("read settings: %w", err)
		}
		log.Info().Str("path", path).Msg("Creating default settings file")
		if err := v.WriteConfigAs(path); err != nil {
			log.Warn().Err(err).Msg("Failed to create default settings file")
		}
	} else {
		warnUnknownKeys(path, log)
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		log.Warn().Err(err).Msg("Invalid settings file, using defaults")
		return def, nil
	}

	if err := s.Validate(); err != nil {
		for _, c := range checks {
			if !c.ok(s) {
				log.Warn().Str("key", c.key).Msg("Invalid setting value, using default")
				c.reset(s, def)
			}
		}
	}
	return s, nil
}

func warnUnknownKeys(path string, log zerolog.Logger) {
	raw := viper.New()
	raw.SetConfigFile(path)
	raw.SetConfigType("json")
	if err := raw.ReadInConfig(); err != nil {
		return
	}
	known := make([]string, 0, len(defaults))
	for k := range defaults {
		known = append(known, strings.ToLower(k))
	}
	for _, key := range raw.AllKeys() {
		if !slices.Contains(known, key) {
			log.Warn().Str("key", key).Msg("Unrecognised setting key in settings file")
		}
	}
}

type check struct {
	key   string
	ok    func(*Settings) bool
	reset func(s, def *Settings)
}

var checks = []check{
	{"logLevel", func(s *Settings) bool {
		_, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
		return err == nil && s.LogLevel != ""
	}, func(s, d *Settings) { s.LogLevel = d.LogLevel }},
	{"window.width", func(s *Settings) bool { return s.Window.Width > 0 }, func(s, d *Settings) { s.Window.Width = d.Window.Width }},
	{"window.height", func(s *Settings) bool { return s.Window.Height > 0 }, func(s, d *Settings) { s.Window.Height = d.Window.Height }},
	{"view.mode", func(s *Settings) bool {
		m := strings.ToLower(s.View.Mode)
		return m == "2d" || m == "3d"
	}, func(s, d *Settings) { s.View.Mode = d.View.Mode }},
	{"view.distance", func(s *Settings) bool { return s.View.Distance > 0 }, func(s, d *Settings) { s.View.Distance = d.View.Distance }},
	{"view.axisLength", func(s *Settings) bool { return s.View.AxisLength >= 0 }, func(s, d *Settings) { s.View.AxisLength = d.View.AxisLength }},
	{"view.gridSize", func(s *Settings) bool { return s.View.GridSize > 0 }, func(s, d *Settings) { s.View.GridSize = d.View.GridSize }},
	{"view.fitMargin", func(s *Settings) bool { return s.View.FitMargin > 0 }, func(s, d *Settings) { s.View.FitMargin = d.View.FitMargin }},
	{"gesture.panDamping", func(s *Settings) bool { return s.Gesture.PanDamping > 0 && s.Gesture.PanDamping <= 1 }, func(s, d *Settings) { s.Gesture.PanDamping = d.Gesture.PanDamping }},
	{"gesture.friction", func(s *Settings) bool { return s.Gesture.Friction > 0 && s.Gesture.Friction < 1 }, func(s, d *Settings) { s.Gesture.Friction = d.Gesture.Friction }},
	{"gesture.momentumThreshold", func(s *Settings) bool { return s.Gesture.MomentumThreshold >= 0 }, func(s, d *Settings) { s.Gesture.MomentumThreshold = d.Gesture.MomentumThreshold }},
	{"gesture.momentumEpsilon", func(s *Settings) bool { return s.Gesture.MomentumEpsilon > 0 }, func(s, d *Settings) { s.Gesture.MomentumEpsilon = d.Gesture.MomentumEpsilon }},
	{"gesture.momentumSpeed", func(s *Settings) bool { return s.Gesture.MomentumSpeed >= 0 }, func(s, d *Settings) { s.Gesture.MomentumSpeed = d.Gesture.MomentumSpeed }},
	{"gesture.rotate2DSpeed", func(s *Settings) bool { return s.Gesture.Rotate2DSpeed >= 0 }, func(s, d *Settings) { s.Gesture.Rotate2DSpeed = d.Gesture.Rotate2DSpeed }},
	{"gesture.zoomSensitivity", func(s *Settings) bool { return s.Gesture.ZoomSensitivity > 0 && s.Gesture.ZoomSensitivity < 1 }, func(s, d *Settings) { s.Gesture.ZoomSensitivity = d.Gesture.ZoomSensitivity }},
	{"gesture.minSensitivity", func(s *Settings) bool {
		return s.Gesture.MinSensitivity > 0 && s.Gesture.MinSensitivity <= s.Gesture.MaxSensitivity
	}, func(s, d *Settings) {
		s.Gesture.MinSensitivity, s.Gesture.MaxSensitivity = d.Gesture.MinSensitivity, d.Gesture.MaxSensitivity
	}},
	{"gesture.sensitivityGain", func(s *Settings) bool { return s.Gesture.SensitivityGain >= 0 }, func(s, d *Settings) { s.Gesture.SensitivityGain = d.Gesture.SensitivityGain }},
	{"simulation.tickRate", func(s *Settings) bool { return s.Simulation.TickRate > 0 && s.Simulation.TickRate <= 240 }, func(s, d *Settings) { s.Simulation.TickRate = d.Simulation.TickRate }},
	{"simulation.duration", func(s *Settings) bool { return s.Simulation.Duration > 0 }, func(s, d *Settings) { s.Simulation.Duration = d.Simulation.Duration }},
	{"live.pollInterval", func(s *Settings) bool { return s.Live.PollInterval >= 100*time.Millisecond }, func(s, d *Settings) { s.Live.PollInterval = d.Live.PollInterval }},
	{"live.timeout", func(s *Settings) bool { return s.Live.Timeout > 0 }, func(s, d *Settings) { s.Live.Timeout = d.Live.Timeout }},
}

// Validate reports every out of range value, each wrapping ErrInvalidSetting.
func (s *Settings) Validate() error {
	var errs []error
	for _, c := range checks {
		if !c.ok(s) {
			errs = append(errs, fmt.Errorf("%s: %w", c.key, ErrInvalidSetting))
		}
	}
	return errors.Join(errs...)
}
