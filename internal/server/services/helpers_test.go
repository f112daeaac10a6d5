package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/access"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keylock"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/sessions"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// env wires every service over one store, like the server does.
type env struct {
	manager  repomanager.RepositoryManager
	sessions *sessions.MemoryStore
	locks    *keylock.Table
	hasher   credentials.Hasher
	reg      *RegistrationService
	auth     *AuthService
	external *ExternalLoginService
	accounts *AccountService
	gate     *access.Gate
}

func newEnv(m repomanager.RepositoryManager) *env {
	if m == nil {
		m = repomanager.NewMemoryRepositoryManager()
	}
	e := &env{
		manager:  m,
		sessions: sessions.NewMemoryStore(0),
		locks:    keylock.New(),
		hasher:   credentials.MD5Hasher{Pepper: credentials.DefaultPepper},
	}
	log := logging.Nop{}
	e.reg = NewRegistrationService(m, e.hasher, e.locks, log)
	e.auth = NewAuthService(m, e.hasher, e.sessions, log)
	e.external = NewExternalLoginService(m, e.auth, e.locks, nil, log)
	e.accounts = NewAccountService(m, e.hasher, e.locks, log)
	e.gate = access.NewGate(e.auth, log)

	e.reg.now = fixedClock
	e.auth.now = fixedClock
	e.external.now = fixedClock
	e.accounts.now = fixedClock
	return e
}

// fakeManager serves a single repository, typically a fakeRepo.
type fakeManager struct {
	repo accounts.Repository
}

func (m *fakeManager) Accounts() accounts.Repository { return m.repo }
func (m *fakeManager) InTx(ctx context.Context, fn func(context.Context, accounts.Repository) error) error {
	return fn(ctx, m.repo)
}
func (m *fakeManager) RunMigrations(context.Context) error { return nil }
func (m *fakeManager) Close() error                        { return nil }

// fakeRepo is an account store with no uniqueness enforcement and
// injectable failures. insertDelay widens the check-then-insert window.
type fakeRepo struct {
	mu          sync.Mutex
	rows        []*models.Account
	insertDelay time.Duration
	insertID    int64

	countErr  error
	insertErr error
	findErr   error
	updateErr error
	listErr   error
}

func (f *fakeRepo) Insert(ctx context.Context, a *models.Account) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	if f.insertDelay > 0 {
		time.Sleep(f.insertDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertID < 0 {
		return 0, nil
	}
	c := a.Clone()
	c.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, c)
	a.ID = c.ID
	return c.ID, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return f.FindOne(ctx, models.AccountQuery{ID: id})
}

func (f *fakeRepo) FindOne(ctx context.Context, q models.AccountQuery) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if q.Matches(r) {
			return r.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRepo) Count(ctx context.Context, q models.AccountQuery) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if q.Matches(r) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) UpdateByID(ctx context.Context, a *models.Account) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == a.ID && !r.Deleted {
			if a.AvatarURL != "" {
				r.AvatarURL = a.AvatarURL
			}
			if a.Role != "" {
				r.Role = a.Role
			}
			r.UpdatedAt = a.UpdatedAt
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) SoftDeleteByID(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && !r.Deleted {
			r.Deleted = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) List(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Account
	for _, r := range f.rows {
		if q.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (f *fakeRepo) liveRows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if !r.Deleted {
			n++
		}
	}
	return n
}
