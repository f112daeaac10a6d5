package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/keylock"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// CodeExchanger turns an OAuth authorization code into the provider's view
// of the user.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*models.ExternalProfile, error)
}

// ExternalLoginService reconciles an OAuth union identity with the local
// account table.
type ExternalLoginService struct {
	repomanager repomanager.RepositoryManager
	auth        *AuthService
	locks       *keylock.Table
	exchanger   CodeExchanger
	logger      logging.Logger
	now         func() time.Time
}

// NewExternalLoginService builds the reconciler. exchanger may be nil when
// no provider is configured; code login then fails with an OperationError.
func NewExternalLoginService(m repomanager.RepositoryManager, auth *AuthService, locks *keylock.Table, exchanger CodeExchanger, logger logging.Logger) *ExternalLoginService {
	return &ExternalLoginService{
		repomanager: m,
		auth:        auth,
		locks:       locks,
		exchanger:   exchanger,
		logger:      logger.With("module", "external_login"),
		now:         time.Now,
	}
}

// LoginOrCreate finds the account holding p.UnionID, creating a user
// account when there is none, and binds handle to it. A banned account is
// refused before anything else happens.
func (s *ExternalLoginService) LoginOrCreate(ctx context.Context, handle string, p models.ExternalProfile) (*models.AccountView, error) {
	if anyBlank(p.UnionID, p.MpOpenID) {
		return nil, common.NewParamsError("parameters are empty")
	}

	unlock, err := s.locks.Lock(ctx, unionIDKey(p.UnionID))
	if err != nil {
		return nil, common.NewSystemError("request canceled", err)
	}
	defer unlock()

	repo := s.repomanager.Accounts()

	account, err := repo.FindOne(ctx, models.AccountQuery{UnionID: p.UnionID})
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		account, err = s.create(ctx, p)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.Error(ctx, "lookup by union id failed", "union_id", p.UnionID, "err", err)
		return nil, common.NewSystemError("login failed", err)
	}

	if account.IsBanned() {
		s.logger.Warn(ctx, "banned account refused", "account_id", account.ID)
		return nil, common.NewForbiddenError("account banned, login refused")
	}

	if err := s.auth.Bind(ctx, handle, account); err != nil {
		return nil, err
	}
	return models.NewAccountView(account), nil
}

func (s *ExternalLoginService) create(ctx context.Context, p models.ExternalProfile) (*models.Account, error) {
	repo := s.repomanager.Accounts()
	ts := timex.Millis(s.now())
	account := &models.Account{
		UnionID:     p.UnionID,
		MpOpenID:    p.MpOpenID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Role:        models.RoleUser,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	id, err := repo.Insert(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// Another process inserted the same union id; use its row.
			existing, findErr := repo.FindOne(ctx, models.AccountQuery{UnionID: p.UnionID})
			if findErr == nil {
				return existing, nil
			}
			err = errors.Join(err, findErr)
		}
		s.logger.Error(ctx, "create external account failed", "union_id", p.UnionID, "err", err)
		return nil, common.NewSystemError("login failed", err)
	}
	if id <= 0 {
		s.logger.Error(ctx, "create external account returned no id", "union_id", p.UnionID)
		return nil, common.NewSystemError("login failed", nil)
	}

	s.logger.Info(ctx, "external account created", "account_id", id)
	return account, nil
}

// LoginWithOAuthCode exchanges code with the provider and logs the
// resulting identity in through LoginOrCreate.
func (s *ExternalLoginService) LoginWithOAuthCode(ctx context.Context, handle, code string) (*models.AccountView, error) {
	if isBlank(code) {
		return nil, common.NewParamsError("parameters are empty")
	}
	if s.exchanger == nil {
		return nil, common.NewOperationError("oauth login is not configured")
	}

	profile, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		s.logger.Error(ctx, "oauth exchange failed", "err", err)
		return nil, common.NewSystemError("login failed, system error", err)
	}
	if profile == nil || anyBlank(profile.UnionID, profile.MpOpenID) {
		s.logger.Error(ctx, "oauth profile lacks union id or open id")
		return nil, common.NewSystemError("login failed, system error", nil)
	}

	return s.LoginOrCreate(ctx, handle, *profile)
}
