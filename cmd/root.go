// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/log"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagPlayer          string
	flagLoop            bool
	flagSlideInterval   int
	flagRefreshInterval int
	flagNoLockdown      bool
	flagDisplay         string
	flagDebug           bool
)

// cfg holds the loaded configuration (merged: defaults < config file <
// managed overrides < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "marquee [locator]",
	Short: "Turn a Mac into a fullscreen content kiosk",
	Long: `Marquee presents a video, PDF, website or slide deck fullscreen and
locks the desktop down around it. Escape with the unlock chord and an
administrator password.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              startRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPlayer, "player", "p", "", "Player: builtin | vlc | iina | quicktime | preview | acrobat | chrome | firefox | safari | keynote | powerpoint")
	rootCmd.PersistentFlags().BoolVar(&flagLoop, "loop", true, "Loop the content until stopped")
	rootCmd.PersistentFlags().IntVar(&flagSlideInterval, "slide-interval", 0, "Seconds per page in the built-in PDF slideshow")
	rootCmd.PersistentFlags().IntVar(&flagRefreshInterval, "refresh-interval", 0, "Seconds between built-in website reloads (0 = never)")
	rootCmd.PersistentFlags().BoolVar(&flagNoLockdown, "no-lockdown", false, "Present fullscreen without locking the desktop down")
	rootCmd.PersistentFlags().StringVar(&flagDisplay, "display", "", "Target display: main | all | index")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(displaysCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file <
// managed overrides < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if cmd.Flags().Changed("loop") {
		cfg.Loop = flagLoop
	}
	if flagSlideInterval > 0 {
		cfg.SlideInterval = flagSlideInterval
	}
	if cmd.Flags().Changed("refresh-interval") {
		cfg.RefreshInterval = flagRefreshInterval
	}
	if flagNoLockdown {
		cfg.Lockdown = false
	}
	if flagDisplay != "" {
		cfg.Display = flagDisplay
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Configure(log.Config{Debug: cfg.Debug})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marquee %s\n", Version)
	},
}
