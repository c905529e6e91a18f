package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/deps"
	"github.com/user/cliporama/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve [clip]",
	Short: "Stream an existing clip once over HTTP",
	Long:  `Serve a clip to the first HTTP consumer, the same way a run does after cutting. Defaults to the configured output path.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)
		if err := validateConfig(cfg); err != nil {
			return err
		}
		if err := deps.Ffmpeg(cfg.FfmpegPath).Check(); err != nil {
			return err
		}

		target := cfg.ClipPath
		if len(args) == 1 {
			target = args[0]
		}
		clipPath, err := clip.OutputPath(target)
		if err != nil {
			return err
		}
		if _, err := os.Stat(clipPath); err != nil {
			return fmt.Errorf("clip not found: %s", clipPath)
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		srv := newStreamer(cfg, newLogger(cfg))
		fmt.Printf("Sending clip via %s...\n", srv.Describe())
		err = srv.Serve(ctx, clipPath)
		if errors.Is(err, stream.ErrTimeout) {
			fmt.Println(warnStyle.Render("Timeout: nobody fetched the clip"))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Done"))
		return nil
	},
}

func init() {
	serveCmd.Flags().StringP("out", "o", "", "Clip to serve when no argument is given")
	serveCmd.Flags().String("url", "", "Listen URL")
	serveCmd.Flags().String("format", "", "Stream container format")
	serveCmd.Flags().Duration("timeout", 0, "How long to wait for a consumer")
	rootCmd.AddCommand(serveCmd)
}
