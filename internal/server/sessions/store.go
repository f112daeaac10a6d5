// Package sessions keeps the server-side binding from an opaque session
// handle to the account that logged in on it.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Binding is what a handle points at. Account is the snapshot taken at
// login; callers needing current role or profile must re-read the store.
type Binding struct {
	AccountID int64
	Account   *models.Account
	CreatedAt time.Time
}

// Store holds at most one Binding per handle. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns common.ErrorNotFound when handle has no live binding.
	Get(ctx context.Context, handle string) (*Binding, error)
	// Put creates or replaces the binding for handle.
	Put(ctx context.Context, handle string, b *Binding) error
	// Delete removes the binding and reports whether one existed.
	Delete(ctx context.Context, handle string) (bool, error)
}
