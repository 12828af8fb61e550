package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskmaster/internal/analytics"
	"github.com/sandeepkv93/taskmaster/internal/storage"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion rate and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days > analytics.MaxDays {
				return fmt.Errorf("--days must be at most %d, got %d", analytics.MaxDays, days)
			}
			tasks := opts.app.Store.Tasks()
			c := analytics.CompletionOf(tasks)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "completed %d of %d (%.0f%%), %d active\n", c.Completed, c.Total, c.Rate()*100, c.Active)

			timeline := analytics.Timeline(tasks, time.Now(), days)
			fmt.Fprintf(w, "\n  %-10s %-4s %-7s %s\n", "DATE", "DAY", "CREATED", "DONE")
			for _, d := range timeline {
				fmt.Fprintf(w, "  %-10s %-4s %-7d %d\n", d.Date.Format(time.DateOnly), d.Label, d.Created, d.Completed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", analytics.DefaultDays, "number of days in the activity window")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task to stdout",
		Long:  `Write every task to stdout as json (the stored format) or yaml.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := opts.app.Store.Tasks()
			var (
				out []byte
				err error
			)
			switch strings.ToLower(format) {
			case "json":
				out, err = storage.Encode(tasks)
			case "yaml", "yml":
				out, err = storage.EncodeYAML(tasks)
			default:
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := w.Write(out); err != nil {
				return err
			}
			if len(out) > 0 && out[len(out)-1] != '\n' {
				fmt.Fprintln(w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}
