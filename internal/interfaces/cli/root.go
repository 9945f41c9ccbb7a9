package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/infrastructure/config"
	"github.com/example/visa-watch/internal/infrastructure/logging"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRoot() *cobra.Command {
	var envFiles []string
	cmd := &cobra.Command{
		Use:           "visawatch",
		Short:         "Watch the visa appointment portal for an earlier date",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}
			logger := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), cmd.OutOrStdout())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd)
		},
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load (missing files are ignored)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewOnceCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCredentialsCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the command line and returns the process exit code. Errors
// are logged once; a cancelled context is a clean exit.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	logCtx := ctx
	if cmd != nil && cmd.Context() != nil {
		logCtx = cmd.Context()
	}
	ctxlog.FromContext(logCtx).Error("visawatch stopped", "err", err)
	return 1
}
