package cli

import (
	"fmt"

	"github.com/example/visa-watch/internal/application/usecases"
	"github.com/spf13/cobra"
)

func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash of the password read from stdin, for STATUS_PASSWORD_BCRYPT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := usecases.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "visawatch %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
