package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/example/visa-watch/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

func NewHistoryCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history",
		Short: "Show recent attempts from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.JournalDSN == "" {
				fmt.Fprintln(out, "no journal configured; set JOURNAL_DSN to keep attempts between runs")
				return nil
			}

			journal, err := openJournal(ctx, cfg.JournalDSN)
			if err != nil {
				return err
			}
			defer journal.Close()

			attempts, err := journal.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintln(out, "no attempts recorded")
				return nil
			}

			now := time.Now()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tOUTCOME\tCANDIDATE\tPAGES\tTOOK\tERROR")
			for _, a := range attempts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					humanize.RelTime(a.StartedAt, now, "ago", "from now"),
					a.Outcome,
					dash(a.Candidate),
					a.PagesAdvanced,
					a.Duration().Round(time.Second),
					dash(errorSummary(a.ErrorKind, a.Error)),
				)
			}
			return tw.Flush()
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "number of attempts to show")
	return c
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func errorSummary(kind, msg string) string {
	if kind == "" {
		return ""
	}
	msg = strings.ReplaceAll(msg, "\n", " ")
	if len(msg) > 80 {
		msg = msg[:77] + "..."
	}
	return kind + ": " + msg
}
