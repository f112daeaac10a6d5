package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the accountctl command tree.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "accountctl",
		Short: "Manage gophauth accounts",
		Long: `accountctl talks to a gophauth server.

Login stores the session handle in the session file so later commands run
as the same account until logout.

Examples:
  accountctl register alice
  accountctl login alice
  accountctl whoami
  accountctl accounts list --admin`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a JSON config file")
	pf.StringVarP(&a.addr, "addr", "a", "", "server address, host:port")
	pf.StringVar(&a.sessionFile, "session-file", "", "where the session handle is kept")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newOAuthLoginCmd(a),
		newLogoutCmd(a),
		newWhoAmICmd(a),
		newProfileCmd(a),
		newAvatarCmd(a),
		newAccountsCmd(a),
		newBootstrapAdminCmd(),
	)
	return root
}
