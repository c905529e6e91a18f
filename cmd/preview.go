package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/config"
	"github.com/user/cliporama/db"
	"github.com/user/cliporama/mpv"
	"github.com/user/cliporama/pkg/timeutil"
)

var previewCmd = &cobra.Command{
	Use:   "preview [clip]",
	Short: "Open a clip in mpv",
	Long: `Open a clip in mpv, looping until the window is closed. Without an
argument the most recent clip from the run history is used, falling back to
the configured output path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		clipPath, err := previewTarget(cfg, args)
		if err != nil {
			return err
		}

		fmt.Printf("Opening clip: %s\n", pathStyle.Render(filepath.Base(clipPath)))
		line, err := previewClip(cmd.Context(), cfg, clipPath, true)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	},
}

// previewTarget picks the clip to open: the argument, the last recorded
// clip, or the configured output path.
func previewTarget(cfg config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return clip.OutputPath(args[0])
	}
	if cfg.HistoryPath != "" {
		database, err := db.Open(cfg.HistoryPath)
		if err == nil {
			defer database.Close()
			run, err := db.SelectLastClip(database)
			if err == nil {
				return run.ClipPath, nil
			}
			if !errors.Is(err, db.ErrRunNotFound) {
				return "", fmt.Errorf("failed to read history: %w", err)
			}
		}
	}
	return clip.OutputPath(cfg.ClipPath)
}

// previewClip opens clipPath in mpv and describes what mpv loaded. With wait
// set it blocks until mpv exits; otherwise mpv is reaped in the background.
func previewClip(ctx context.Context, cfg config.Config, clipPath string, wait bool) (string, error) {
	info, process, err := mpv.Preview(ctx, clipPath, mpv.LaunchOptions{Bin: cfg.MpvPath, Loop: true})
	if err != nil {
		return "", err
	}

	line := fmt.Sprintf("Previewing %s", filepath.Base(clipPath))
	if info.Duration > 0 {
		line += fmt.Sprintf(" (%s, %.2fs", timeutil.FormatTime(info.Duration), info.Duration)
		if info.Width > 0 {
			line += fmt.Sprintf(", %dx%d", info.Width, info.Height)
		}
		line += ")"
	}

	if !wait {
		go process.Wait()
		return line, nil
	}
	fmt.Println(line)
	if err := process.Wait(); err != nil {
		return "", fmt.Errorf("mpv exited: %w", err)
	}
	return "Preview closed.", nil
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
