package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/cliporama/library"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the videos a run would choose from",
	Long:  `Scan the configured directory and print every file matching the extensions, in the order used for seeded picks.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)
		if err := validateConfig(cfg); err != nil {
			return err
		}

		fmt.Printf("Scanning for video files in %s\n", pathStyle.Render(cfg.Directory))
		videos, err := library.Scan(cfg.Directory, cfg.Extensions, cfg.Exclude)
		if err != nil {
			return err
		}

		if len(videos) == 0 {
			fmt.Printf("\nNo video files found. Expected extensions: %v\n", cfg.Extensions)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSize\tModified\tPath")
		fmt.Fprintln(w, "-\t----\t--------\t----")

		var total uint64
		for i, v := range videos {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, humanize.Bytes(uint64(v.Size)), humanize.Time(v.ModTime), v.RelPath)
			total += uint64(v.Size)
		}
		w.Flush()

		fmt.Printf("\n%d video file(s), %s total.\n", len(videos), humanize.Bytes(total))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("dir", "d", "", "Directory searched for videos")
	scanCmd.Flags().StringSliceP("ext", "e", nil, "Video filename suffixes")
	scanCmd.Flags().StringSlice("exclude", nil, "Directories to skip")
	rootCmd.AddCommand(scanCmd)
}
