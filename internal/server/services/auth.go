package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/sessions"
)

// AuthService checks credentials and owns the session bindings.
type AuthService struct {
	repomanager repomanager.RepositoryManager
	hasher      credentials.Hasher
	sessions    sessions.Store
	logger      logging.Logger
	now         func() time.Time
}

func NewAuthService(m repomanager.RepositoryManager, hasher credentials.Hasher, store sessions.Store, logger logging.Logger) *AuthService {
	return &AuthService{
		repomanager: m,
		hasher:      hasher,
		sessions:    store,
		logger:      logger.With("module", "auth"),
		now:         time.Now,
	}
}

// Login checks the credentials and binds handle to the matching account.
// An unknown name and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, handle, accountName, password string) (*models.AccountView, error) {
	if anyBlank(accountName, password) {
		return nil, common.NewParamsError("parameters are empty")
	}
	if runeLen(accountName) < common.MinAccountNameLength {
		return nil, common.NewParamsError("account name invalid")
	}
	if runeLen(password) < common.MinPasswordLength {
		return nil, common.NewParamsError("password invalid")
	}

	account, err := s.repomanager.Accounts().FindOne(ctx, models.AccountQuery{
		AccountName:    accountName,
		PasswordDigest: s.hasher.Digest(password),
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "login rejected", "account_name", accountName)
			return nil, common.NewParamsError("account does not exist or password incorrect")
		}
		s.logger.Error(ctx, "login lookup failed", "account_name", accountName, "err", err)
		return nil, common.NewSystemError("login failed, system error", err)
	}

	if err := s.Bind(ctx, handle, account); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "account_id", account.ID)
	return models.NewAccountView(account), nil
}

// Bind stores a binding from handle to account, replacing any previous one.
func (s *AuthService) Bind(ctx context.Context, handle string, account *models.Account) error {
	err := s.sessions.Put(ctx, handle, &sessions.Binding{
		AccountID: account.ID,
		Account:   account.Clone(),
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Error(ctx, "bind session failed", "account_id", account.ID, "err", err)
		return common.NewSystemError("login failed, system error", err)
	}
	return nil
}

// ResolveCurrent returns the account bound to handle, re-read from the
// store. With permitAnonymous a missing binding yields (nil, nil) instead
// of a NotLoggedIn error.
func (s *AuthService) ResolveCurrent(ctx context.Context, handle string, permitAnonymous bool) (*models.Account, error) {
	binding, err := s.sessions.Get(ctx, handle)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "session lookup failed", "err", err)
		return nil, common.NewSystemError("system error", err)
	}
	if err != nil || binding == nil || binding.AccountID == 0 {
		return anonymousOrNotLoggedIn(permitAnonymous)
	}

	account, err := s.repomanager.Accounts().FindByID(ctx, binding.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return anonymousOrNotLoggedIn(permitAnonymous)
		}
		s.logger.Error(ctx, "resolve account failed", "account_id", binding.AccountID, "err", err)
		return nil, common.NewSystemError("system error", err)
	}
	return account, nil
}

// Logout removes the binding on handle. Logging out without a binding is an
// OperationError, so a second logout fails.
func (s *AuthService) Logout(ctx context.Context, handle string) (bool, error) {
	removed, err := s.sessions.Delete(ctx, handle)
	if err != nil {
		s.logger.Error(ctx, "session delete failed", "err", err)
		return false, common.NewSystemError("system error", err)
	}
	if !removed {
		return false, common.NewOperationError("not logged in")
	}
	return true, nil
}

func anonymousOrNotLoggedIn(permitAnonymous bool) (*models.Account, error) {
	if permitAnonymous {
		return nil, nil
	}
	return nil, common.NewNotLoggedInError()
}
