// Package accounts is the account store gateway: lookups, inserts and
// updates against the accounts table. Every predicate lookup excludes
// soft-deleted rows.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is implemented by the Postgres and in-memory stores.
//
// FindByID and FindOne return common.ErrorNotFound when nothing matches.
// Insert returns common.ErrorAlreadyExists when a non-deleted row already
// holds the same account name or union id.
type Repository interface {
	Insert(ctx context.Context, a *models.Account) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindOne(ctx context.Context, q models.AccountQuery) (*models.Account, error)
	Count(ctx context.Context, q models.AccountQuery) (int64, error)
	// UpdateByID writes the non-empty mutable fields of a (display name,
	// avatar, profile, role, digest) plus UpdatedAt. It reports whether a
	// live row was changed.
	UpdateByID(ctx context.Context, a *models.Account) (bool, error)
	SoftDeleteByID(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.Account, error)
}
