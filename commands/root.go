package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mboven/canvass-replay/internal/util"
)

var (
	// Logging related
	debug bool

	// Data path
	dataDir string

	rootCmd = &cobra.Command{
		Use:   "canvass-replay",
		Short: "Time-scrubbable replay of campaign canvassing activity",
		Long: `canvass-replay animates a campaign's door-knocking and poster activity
over its date range on a terminal map.

Records reveal day by day in a deterministic pseudo-random order; the most
recent reveals are emphasized so the viewer can follow the campaign's front
line. Playback can be paused, scrubbed, speed-adjusted, and filtered by
activity category.

Examples:
  canvass-replay play                                  # Replay the default dataset
  canvass-replay play --dir ./data --speed 2           # Custom dataset at 2x speed
  canvass-replay play --headless --days 30             # Unattended run over 30 days
  canvass-replay transform --input raw/ --output data/sanitized.json`,
	}
)

const (
	defaultLogFile = "~/.canvass-replay/logs/app.log"
	defaultDataDir = "./data"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Dataset directory containing sanitized activity batch files")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

// initLogging sets up the shared logger for all commands.
func initLogging() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		logFile = ""
	}
	util.InitLogger(logLevel, logFile, debug)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
