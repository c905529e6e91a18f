package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/user/cliporama/config"
	"github.com/user/cliporama/deps"
	"github.com/user/cliporama/logging"
)

var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "cliporama",
	Short: "Cut a random clip from a video library and stream it",
	Long: `cliporama picks a random video from a directory tree, cuts a short clip
from a random point in it with ffmpeg, and serves the clip once over HTTP.

Run without a subcommand to make a clip with the configured defaults.

Features:
  - Reproducible picks with --seed
  - Live progress view with --tui
  - Run history in SQLite, with replay of past clips
  - Preview the last clip in mpv`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClip,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cliporama version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that ffmpeg and ffprobe (required) and mpv (used by preview) are installed and available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Println("Checking dependencies...")
		fmt.Println()

		missing := 0
		for _, t := range []deps.Tool{deps.Ffmpeg(cfg.FfmpegPath), deps.Ffprobe(cfg.FfprobePath), deps.Mpv(cfg.MpvPath)} {
			if err := t.Check(); err != nil {
				fmt.Println(failStyle.Render("✗") + fmt.Sprintf(" %s: NOT FOUND", t.Bin))
				fmt.Printf("  Install from: %s\n", t.InstallURL)
				if t.Required {
					missing++
				}
				continue
			}
			fmt.Println(okStyle.Render("✓") + fmt.Sprintf(" %s: OK", t.Bin))
		}

		fmt.Println()
		if missing > 0 {
			return fmt.Errorf("%d required dependency(ies) missing", missing)
		}
		fmt.Println("All required dependencies are installed!")
		return nil
	},
}

// loadConfig reads the config file named by --config (or ./cliporama.json)
// and applies --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cwd, path)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

func newLogger(cfg config.Config) hclog.Logger {
	return logging.New(cfg.LogLevel, os.Stderr)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.FileName+" if present)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error, off")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
