package accounts

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. It enforces the same
// partial uniqueness as the Postgres indexes and hands out copies only.
type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []*models.Account
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Insert(ctx context.Context, a *models.Account) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Deleted {
			continue
		}
		if a.AccountName != "" && row.AccountName == a.AccountName {
			return 0, common.ErrorAlreadyExists
		}
		if a.UnionID != "" && row.UnionID == a.UnionID {
			return 0, common.ErrorAlreadyExists
		}
	}

	stored := a.Clone()
	stored.ID = r.nextID
	stored.Deleted = false
	r.nextID++
	r.rows = append(r.rows, stored)

	a.ID = stored.ID
	return stored.ID, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.FindOne(ctx, models.AccountQuery{ID: id})
}

func (r *MemoryRepository) FindOne(ctx context.Context, q models.AccountQuery) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if q.Matches(row) {
			return row.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Count(ctx context.Context, q models.AccountQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, row := range r.rows {
		if q.Matches(row) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) UpdateByID(ctx context.Context, a *models.Account) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.live(a.ID)
	if row == nil {
		return false, nil
	}
	if a.DisplayName != "" {
		row.DisplayName = a.DisplayName
	}
	if a.AvatarURL != "" {
		row.AvatarURL = a.AvatarURL
	}
	if a.Profile != "" {
		row.Profile = a.Profile
	}
	if a.Role != "" {
		row.Role = a.Role
	}
	if a.PasswordDigest != "" {
		row.PasswordDigest = a.PasswordDigest
	}
	row.UpdatedAt = a.UpdatedAt
	return true, nil
}

func (r *MemoryRepository) SoftDeleteByID(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.live(id)
	if row == nil {
		return false, nil
	}
	row.Deleted = true
	return true, nil
}

func (r *MemoryRepository) List(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Account
	skipped := 0
	for _, row := range r.rows {
		if !q.Matches(row) {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		if page.Limit > 0 && len(result) == page.Limit {
			break
		}
		result = append(result, row.Clone())
	}
	return result, nil
}

// live returns the stored non-deleted row with id. Callers hold mu.
func (r *MemoryRepository) live(id int64) *models.Account {
	for _, row := range r.rows {
		if row.ID == id && !row.Deleted {
			return row
		}
	}
	return nil
}
