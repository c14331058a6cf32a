package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mboven/canvass-replay/internal/application/replay"
	"github.com/mboven/canvass-replay/internal/core/model"
)

var (
	playSpeed        float64
	recentWindow     int
	refreshRate      float64
	playFilter       string
	headless         bool
	headlessDays     float64
	autoLoopPauseMs  int
	updateInterval   float64
	baseDaysPerMilli float64

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Replay the activity dataset on an interactive terminal map",
		Long: `Play loads the sanitized dataset from the data directory and animates it
on a terminal map. Playback starts automatically and loops when it reaches
the end of the date range.

Keys:
  space      play / pause
  left/right scrub one day backward / forward
  0          rewind to the start
  1-4        select playback speed
  f          cycle the category filter (ALL, HOUSE, POSTER)
  e          toggle recent-marker emphasis
  q          quit`,
		RunE: runPlay,
	}
)

func init() {
	playCmd.Flags().Float64VarP(&playSpeed, "speed", "s", 1,
		"Initial playback speed multiplier")
	playCmd.Flags().IntVarP(&recentWindow, "recent-window", "w", 0,
		"Number of markers shown with recent emphasis (0 = default)")
	playCmd.Flags().Float64Var(&refreshRate, "refresh", 0,
		"Display refresh rate in Hz (0 = default)")
	playCmd.Flags().StringVarP(&playFilter, "filter", "f", "ALL",
		"Initial category filter (ALL, HOUSE, POSTER)")
	playCmd.Flags().BoolVar(&headless, "headless", false,
		"Run without a terminal UI and print a run summary")
	playCmd.Flags().Float64Var(&headlessDays, "days", 0,
		"Days of timeline to cover in headless mode (0 = full range)")
	playCmd.Flags().IntVar(&autoLoopPauseMs, "loop-pause", 0,
		"Pause in milliseconds before auto-loop restarts (0 = default)")
	playCmd.Flags().Float64Var(&updateInterval, "update-interval", 0,
		"Redraw quantization step in days (0 = default)")
	playCmd.Flags().Float64Var(&baseDaysPerMilli, "base-rate", 0,
		"Timeline days advanced per real millisecond at speed 1 (0 = default)")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	initLogging()

	filter, ok := model.ParseCategoryFilter(playFilter)
	if !ok {
		return fmt.Errorf("invalid filter %q: expected ALL, HOUSE, or POSTER", playFilter)
	}

	config := &replay.Config{
		DataDir:                expandPath(dataDir),
		InitialSpeed:           playSpeed,
		InitialFilter:          filter,
		RecentWindowSize:       recentWindow,
		UpdateIntervalDays:     updateInterval,
		BaseDaysPerMillisecond: baseDaysPerMilli,
		AutoLoopPause:          time.Duration(autoLoopPauseMs) * time.Millisecond,
		UIRefreshRate:          refreshRate,
	}

	orchestrator, err := replay.NewOrchestrator(config)
	if err != nil {
		return err
	}

	if headless {
		return orchestrator.RunHeadless(headlessDays, os.Stdout)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return orchestrator.Run(ctx)
}
