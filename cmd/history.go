package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/cliporama/config"
	"github.com/user/cliporama/db"
	"github.com/user/cliporama/pkg/timeutil"
	"github.com/user/cliporama/tui/forms"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and replay past runs",
	Long:  `List recorded runs, show one in detail, replay its clip window, or clear the history.`,
	Args:  cobra.NoArgs,
	RunE:  listHistory,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  listHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRunID(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		run, err := db.SelectRunByID(database, id)
		if err != nil {
			return err
		}

		fmt.Printf("Run %d (%s)\n", run.ID, run.UUID)
		fmt.Printf("  Started:  %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
		fmt.Printf("  Status:   %s\n", statusLabel(run.Status))
		fmt.Printf("  Seed:     %d\n", run.Seed)
		if run.SourcePath != "" {
			fmt.Printf("  Source:   %s\n", pathStyle.Render(run.SourcePath))
			fmt.Printf("  Video:    %dx%d, %s\n", run.Width, run.Height, timeutil.FormatTime(run.Duration))
			fmt.Printf("  Window:   %s - %s (%.2fs)\n", timeutil.FormatTime(run.ClipStart), timeutil.FormatTime(run.ClipStart+run.ClipLength), run.ClipLength)
		}
		if run.ClipPath != "" {
			clip := run.ClipPath
			if run.ClipSize > 0 {
				clip += " (" + humanize.Bytes(uint64(run.ClipSize)) + ")"
			}
			fmt.Printf("  Clip:     %s\n", clip)
		}
		if run.FinishedAt.Valid {
			fmt.Printf("  Took:     %s\n", run.FinishedAt.Time.Sub(run.StartedAt).Round(100*time.Millisecond))
		}
		if run.Log != "" {
			fmt.Printf("  Log:      %s\n", run.Log)
		}
		return nil
	},
}

var historyReplayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Cut the same clip again",
	Long: `Re-cut a past run's clip from the same source and window, then serve it.
The current config decides output path, width and streaming.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRunID(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)
		if err := validateConfig(cfg); err != nil {
			return err
		}
		if err := checkTools(cfg); err != nil {
			return err
		}

		database, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		run, err := db.SelectRunByID(database, id)
		if err != nil {
			return err
		}
		if run.SourcePath == "" || run.ClipLength <= 0 {
			return fmt.Errorf("run %d never chose a clip, nothing to replay", id)
		}

		logger := newLogger(cfg)
		ctx, stop := signalContext(cmd)
		defer stop()

		o := runOverrides{Source: run.SourcePath, Start: run.ClipStart, HasStart: true, Length: run.ClipLength}
		runner := newRunner(cfg, o, run.Seed, logger, db.NewHistory(database))
		printer := &progressPrinter{w: cmd.OutOrStdout(), serveTarget: "http"}
		if cfg.Serve {
			printer.serveTarget = newStreamer(cfg, logger).Describe()
		}
		runner.Observer = printer.observe

		fmt.Printf("Replaying run %d\n", run.ID)
		res, err := runner.Run(ctx)
		printResult(cmd.OutOrStdout(), res)
		return err
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if !force {
			confirmed := false
			err := forms.NewConfirmForm("Clear run history?", "Every recorded run is deleted. Clip files are kept.", &confirmed).Run()
			if err != nil && !errors.Is(err, huh.ErrUserAborted) {
				return err
			}
			if !confirmed {
				fmt.Println("Nothing deleted.")
				return nil
			}
		}

		n, err := db.DeleteRuns(database)
		if err != nil {
			return err
		}
		fmt.Printf("%d run(s) deleted.\n", n)
		return nil
	},
}

func listHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := db.SelectRuns(database, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWhen\tStatus\tClip\tSource")
	fmt.Fprintln(w, "--\t----\t------\t----\t------")
	for _, r := range runs {
		window := "-"
		if r.ClipLength > 0 {
			window = fmt.Sprintf("%s +%.1fs", timeutil.FormatTime(r.ClipStart), r.ClipLength)
		}
		source := r.SourcePath
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, humanize.Time(r.StartedAt), r.Status, window, source)
	}
	w.Flush()

	if len(runs) == 0 {
		fmt.Println("\nNo runs recorded.")
	} else {
		fmt.Printf("\n%d run(s) shown.\n", len(runs))
	}
	return nil
}

func openHistory(cfg config.Config) (*sql.DB, error) {
	if cfg.HistoryPath == "" {
		return nil, errors.New("run history is disabled in the config")
	}
	database, err := db.Open(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return database, nil
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid run ID: %s", s)
	}
	return id, nil
}

func statusLabel(status string) string {
	switch status {
	case db.StatusServed:
		return okStyle.Render(status)
	case db.StatusError:
		return failStyle.Render(status)
	case db.StatusTimeout, db.StatusServeFailed:
		return warnStyle.Render(status)
	default:
		return status
	}
}

func init() {
	historyCmd.PersistentFlags().Int("limit", 20, "Number of runs to list (0 for all)")
	historyClearCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	historyReplayCmd.Flags().Bool("no-serve", false, "Cut the clip without streaming it")
	historyReplayCmd.Flags().StringP("out", "o", "", "Output clip path")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyReplayCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
