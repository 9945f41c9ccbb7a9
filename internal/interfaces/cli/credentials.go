package cli

import (
	"errors"
	"fmt"

	"github.com/example/visa-watch/internal/application/usecases"
	"github.com/example/visa-watch/internal/internaltypes"
	"github.com/spf13/cobra"
)

func NewCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the portal password stored in the OS keyring",
	}
	cmd.AddCommand(newCredentialsSetCmd())
	cmd.AddCommand(newCredentialsDeleteCmd())
	return cmd
}

func newCredentialsSetCmd() *cobra.Command {
	var email string
	c := &cobra.Command{
		Use:   "set",
		Short: "Store the password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc := usecases.CredentialsService{Store: newStore()}
			if err := svc.Save(email, pw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stored password for", email)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "portal account email")
	_ = c.MarkFlagRequired("email")
	return c
}

func newCredentialsDeleteCmd() *cobra.Command {
	var email string
	c := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := usecases.CredentialsService{Store: newStore()}
			err := svc.Forget(email)
			if errors.Is(err, internaltypes.ErrNotFound) {
				return fmt.Errorf("no password stored for %s", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted password for", email)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "portal account email")
	_ = c.MarkFlagRequired("email")
	return c
}
