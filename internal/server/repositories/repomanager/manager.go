package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
)

// RepositoryManager vends the account store for the configured backend.
type RepositoryManager interface {
	// Accounts returns a repository bound to the shared connection.
	Accounts() accounts.Repository
	// InTx runs fn with a repository bound to a single transaction. The
	// memory backend runs fn directly.
	InTx(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}
