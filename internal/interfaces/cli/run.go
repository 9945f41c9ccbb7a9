package cli

import (
	"fmt"

	"github.com/example/visa-watch/internal/application/scheduler"
	"github.com/example/visa-watch/internal/application/usecases"
	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/interfaces/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Check for an earlier date until one is found, then sound the alarm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd)
		},
	}
}

func runWatch(cmd *cobra.Command) error {
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
	defer func() {
		if err := journal.Close(); err != nil {
			log.Warn("closing journal", "err", err)
		}
	}()

	check := newCheck(cfg, creds)
	runner := &scheduler.Runner{
		Attempt:  check,
		Alarm:    newAlarm(cfg),
		Journal:  journal,
		Target:   cfg.RegisteredDate,
		Interval: scheduler.Interval{BaseMinutes: cfg.RetryInterval},
	}

	log.Info("watching for an earlier appointment",
		"registered", cfg.RegisteredDate.String(),
		"account", creds.Redacted(),
		"browser", check.Browser.Name(),
		"headless", cfg.RunInBackground,
		"retry_minutes", cfg.RetryInterval,
	)

	var srv *web.Server
	if cfg.StatusAddr != "" {
		tmpl, err := web.ParseTemplates(nil)
		if err != nil {
			return fmt.Errorf("parse templates: %w", err)
		}
		auth := usecases.OperatorAuth{Username: cfg.StatusUser, PasswordHash: cfg.StatusPasswordHash}
		srv = web.New(cfg.StatusAddr, web.NewSessionManager(cfg.SessionHashKey, cfg.SessionBlockKey), auth, runner, journal, tmpl)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })
	if srv != nil {
		g.Go(func() error {
			if err := srv.ListenAndServe(gctx); err != nil {
				return fmt.Errorf("status dashboard: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
