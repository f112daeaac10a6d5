package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/spf13/cobra"
)

// accountName takes the name from args or prompts for it.
func (a *App) accountName(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return readLine(a.in, "Account name", a.out)
}

func newRegisterCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register [account_name]",
		Short: "Create a new account",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			name, err := a.accountName(args)
			if err != nil {
				return err
			}
			password, err := readSecret("Password", a.out)
			if err != nil {
				return err
			}
			confirmation, err := readSecret("Confirm password", a.out)
			if err != nil {
				return err
			}

			id, err := a.api.Register(ctx, name, password, confirmation)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s (id %d)\n", name, id)
			return nil
		}),
	}
}

func newLoginCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [account_name]",
		Short: "Log in with account name and password",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			name, err := a.accountName(args)
			if err != nil {
				return err
			}
			password, err := readSecret("Password", a.out)
			if err != nil {
				return err
			}

			acc, err := a.api.Login(ctx, name, password)
			if err != nil {
				return err
			}
			if err := a.adoptSession(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (id %d, role %s)\n", acc.AccountName, acc.ID, acc.Role)
			return nil
		}),
	}
}

func newOAuthLoginCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "oauth-login <code>",
		Short: "Log in with an authorization code from the external provider",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			acc, err := a.api.LoginWithOAuthCode(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.adoptSession(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (id %d)\n", displayName(acc), acc.ID)
			return nil
		}),
	}
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			err := a.api.Logout(ctx)
			// A session the server no longer knows is useless locally too.
			if err != nil && !errors.Is(err, client.ErrRejected) {
				return err
			}
			if cerr := a.sessions.Clear(); cerr != nil {
				return cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		}),
	}
}

func newWhoAmICmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			acc, err := a.api.WhoAmI(ctx)
			if err != nil {
				return err
			}
			printAccount(a.out, acc)
			return nil
		}),
	}
}

func displayName(acc *pb.Account) string {
	if acc.DisplayName != "" {
		return acc.DisplayName
	}
	return acc.AccountName
}
