package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ThatOtherAndrew/Layerview/internal/config"
	"github.com/ThatOtherAndrew/Layerview/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	settings *config.Settings
	logger   zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "layerview",
	Short:             "Preview G-code toolpaths in 2D and 3D",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ~/.config/layerview/settings.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads settings and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	boot := logging.New(logLevel, cmd.ErrOrStderr())

	path := cfgFile
	if path == "" {
		var err error
		path, err = config.GetSettingsPath()
		if err != nil {
			return err
		}
	}

	s, err := config.Load(path, logging.Component(boot, "config"))
	if err != nil {
		return err
	}
	settings = s

	level := settings.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger = logging.New(level, cmd.ErrOrStderr())
	logger.Debug().Str("settings", path).Str("level", level).Msg("Settings loaded")
	return nil
}
