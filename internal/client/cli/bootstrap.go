package cli

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	sc "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keylock"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/spf13/cobra"
)

// openStore is a test seam for repomanager.Open.
var openStore = repomanager.Open

// newBootstrapAdminCmd works on the store directly, with the server's
// environment configuration, so the first administrator can be created
// before any admin session exists.
func newBootstrapAdminCmd() *cobra.Command {
	var backend, dsn string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin <account_name>",
		Short: "Create or promote an administrator directly in the store",
		Long: `Create an administrator account, or promote an existing account and reset
its password. Reads the server configuration from GOPHAUTH_* variables; the
password pepper and digest algorithm must match the server's.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sc.LoadFromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("store") {
				cfg.StoreBackend = backend
			}
			if cmd.Flags().Changed("dsn") {
				cfg.DatabaseDSN = dsn
			}

			out := cmd.OutOrStdout()
			password, err := readSecret("Admin password", out)
			if err != nil {
				return err
			}

			hasher, err := credentials.NewHasher(cfg.DigestAlgorithm, cfg.PasswordPepper)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg.StoreBackend, cfg.DatabaseDSN, cfg.RunMigrations)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
			svc := services.NewAccountService(store, hasher, keylock.New(), logger)
			id, created, err := svc.BootstrapAdmin(ctx, args[0], password)
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(out, "Created admin %s (id %d)\n", args[0], id)
			} else {
				fmt.Fprintf(out, "Promoted %s (id %d) to admin\n", args[0], id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "store", "", "store backend (postgres, memory)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN")
	return cmd
}
