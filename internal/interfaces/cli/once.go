package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/domain/appointment"
	"github.com/example/visa-watch/internal/domain/attempt"
	"github.com/example/visa-watch/internal/internaltypes"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single attempt and print the earliest date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := ctxlog.FromContext(ctx)

			cfg, creds, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			journal, err := openJournal(ctx, cfg.JournalDSN)
			if err != nil {
				return err
			}
			defer journal.Close()

			a := attempt.Attempt{ID: uuid.NewString(), StartedAt: time.Now()}
			res, err := newCheck(cfg, creds).Execute(ctx)
			a.FinishedAt = time.Now()
			a.PagesAdvanced = res.PagesAdvanced

			if err != nil {
				a.Outcome = attempt.OutcomeFailed
				a.ErrorKind = string(internaltypes.KindOf(err))
				a.Error = err.Error()
			} else {
				a.Candidate = res.Candidate.String()
				a.Outcome = attempt.OutcomeNotBetter
				if appointment.Decide(cfg.RegisteredDate, res.Candidate) == appointment.Alert {
					a.Outcome = attempt.OutcomeBetterDate
				}
			}
			if jerr := journal.Record(context.WithoutCancel(ctx), a); jerr != nil {
				log.Warn("journal record failed", "attempt_id", a.ID, "err", jerr)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "earliest:   %s\n", a.Candidate)
			fmt.Fprintf(out, "registered: %s\n", cfg.RegisteredDate)
			fmt.Fprintf(out, "pages:      %d\n", a.PagesAdvanced)
			fmt.Fprintf(out, "decision:   %s\n", appointment.Decide(cfg.RegisteredDate, res.Candidate))
			return nil
		},
	}
}
