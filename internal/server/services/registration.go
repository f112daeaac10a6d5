// Package services contains the account business logic: registration,
// password and OAuth login, session resolution, administration and avatar
// uploads. Every failure it returns is a common.AccountError.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keylock"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// Lock keys are namespaced so a name and a union id never share a mutex.
func accountNameKey(name string) string { return "account-name:" + name }
func unionIDKey(unionID string) string  { return "union-id:" + unionID }

// RegistrationService creates password accounts.
type RegistrationService struct {
	repomanager repomanager.RepositoryManager
	hasher      credentials.Hasher
	locks       *keylock.Table
	logger      logging.Logger
	now         func() time.Time
}

func NewRegistrationService(m repomanager.RepositoryManager, hasher credentials.Hasher, locks *keylock.Table, logger logging.Logger) *RegistrationService {
	return &RegistrationService{
		repomanager: m,
		hasher:      hasher,
		locks:       locks,
		logger:      logger.With("module", "registration"),
		now:         time.Now,
	}
}

// Register validates the input and inserts a new user account, returning
// its id. Concurrent registrations of one name are serialised; exactly one
// of them succeeds.
func (s *RegistrationService) Register(ctx context.Context, accountName, password, confirmation string) (int64, error) {
	if anyBlank(accountName, password, confirmation) {
		return 0, common.NewParamsError("parameters are empty")
	}
	if runeLen(accountName) < common.MinAccountNameLength {
		return 0, common.NewParamsError("account name too short")
	}
	if runeLen(password) < common.MinPasswordLength || runeLen(confirmation) < common.MinPasswordLength {
		return 0, common.NewParamsError("password too short")
	}
	if password != confirmation {
		return 0, common.NewParamsError("passwords do not match")
	}

	unlock, err := s.locks.Lock(ctx, accountNameKey(accountName))
	if err != nil {
		return 0, common.NewSystemError("request canceled", err)
	}
	defer unlock()

	repo := s.repomanager.Accounts()

	n, err := repo.Count(ctx, models.AccountQuery{AccountName: accountName})
	if err != nil {
		s.logger.Error(ctx, "count accounts failed", "account_name", accountName, "err", err)
		return 0, common.NewSystemError("registration failed, database error", err)
	}
	if n > 0 {
		return 0, common.NewParamsError("account already exists")
	}

	ts := timex.Millis(s.now())
	account := &models.Account{
		AccountName:    accountName,
		PasswordDigest: s.hasher.Digest(password),
		Role:           models.RoleUser,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}

	id, err := repo.Insert(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Warn(ctx, "registration lost to unique index", "account_name", accountName)
			return 0, common.NewParamsError("account already exists")
		}
		s.logger.Error(ctx, "insert account failed", "account_name", accountName, "err", err)
		return 0, common.NewSystemError("registration failed, database error", err)
	}
	if id <= 0 {
		s.logger.Error(ctx, "insert account returned no id", "account_name", accountName)
		return 0, common.NewSystemError("registration failed, database error", nil)
	}

	s.logger.Info(ctx, "account registered", "account_id", id)
	return id, nil
}
