package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/cliporama/deps"
	"github.com/user/cliporama/pkg/timeutil"
	"github.com/user/cliporama/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe <video-file>",
	Short: "Print the metadata a run would use for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := deps.Ffprobe(cfg.FfprobePath).Check(); err != nil {
			return err
		}

		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		info, err := os.Stat(absPath)
		if os.IsNotExist(err) {
			return fmt.Errorf("video file not found: %s", absPath)
		}
		if err != nil {
			return fmt.Errorf("failed to access video file: %w", err)
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		meta, err := probe.NewProber(cfg.FfprobePath, newLogger(cfg)).Probe(ctx, absPath)
		if err != nil {
			return err
		}

		audio := "no"
		if meta.HasAudio {
			audio = "yes"
		}
		fmt.Printf("File:     %s\n", pathStyle.Render(absPath))
		fmt.Printf("Size:     %s\n", humanize.Bytes(uint64(info.Size())))
		fmt.Printf("Codec:    %s\n", meta.Codec)
		fmt.Printf("Width:    %d\n", meta.Width)
		fmt.Printf("Height:   %d\n", meta.Height)
		fmt.Printf("Duration: %s (%.3fs)\n", timeutil.FormatTime(meta.Duration), meta.Duration)
		fmt.Printf("Audio:    %s\n", audio)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
