package cli

import (
	"context"
	"fmt"
	"strconv"

	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}

func newAccountsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Browse and administer accounts",
		Long: `Browse public account views, or administer accounts with --admin and the
add, delete and set-role subcommands. Administration needs a session of an
admin account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newAccountsListCmd(a),
		newAccountsGetCmd(a),
		newAccountsAddCmd(a),
		newAccountsDeleteCmd(a),
		newAccountsSetRoleCmd(a),
	)
	return cmd
}

func newAccountsListCmd(a *App) *cobra.Command {
	var req pb.ListAccountsRequest
	var admin bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			list, err := a.api.ListAccounts(ctx, &req, admin)
			if err != nil {
				return err
			}
			printAccounts(a.out, list)
			return nil
		}),
	}

	f := cmd.Flags()
	f.BoolVar(&admin, "admin", false, "use the administrator listing")
	f.StringVar(&req.AccountName, "name", "", "filter by account name")
	f.StringVar(&req.DisplayName, "display-name", "", "filter by display name")
	f.StringVar(&req.Role, "role", "", "filter by role (user, admin, ban)")
	f.StringVar(&req.UnionID, "union-id", "", "filter by external union id")
	f.IntVar(&req.Limit, "limit", 20, "page size")
	f.IntVar(&req.Offset, "offset", 0, "rows to skip")
	return cmd
}

func newAccountsGetCmd(a *App) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			acc, err := a.api.GetAccount(ctx, id, admin)
			if err != nil {
				return err
			}
			printAccount(a.out, acc)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "use the administrator view")
	return cmd
}

func newAccountsAddCmd(a *App) *cobra.Command {
	var req pb.AddAccountRequest

	cmd := &cobra.Command{
		Use:   "add <account_name>",
		Short: "Create an account with the default password",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.AccountName = args[0]
			id, err := a.api.AddAccount(ctx, &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s (id %d)\n", req.AccountName, id)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&req.DisplayName, "display-name", "", "display name")
	f.StringVar(&req.AvatarURL, "avatar-url", "", "avatar URL")
	f.StringVar(&req.Role, "role", "", "role (user, admin, ban), user when empty")
	return cmd
}

func newAccountsDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteAccount(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted account %d\n", id)
			return nil
		}),
	}
}

func newAccountsSetRoleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <id> <role>",
		Short: "Change the role of an account, ban included",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.UpdateAccount(ctx, &pb.UpdateAccountRequest{ID: id, Role: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account %d is now %s\n", id, args[1])
			return nil
		}),
	}
}
