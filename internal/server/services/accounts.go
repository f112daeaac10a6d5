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
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// MaxPublicPageSize caps ListAccountViews, which anonymous callers reach.
const MaxPublicPageSize = 20

type AddAccountRequest struct {
	AccountName string `json:"account_name" validate:"required,min=4,max=256"`
	DisplayName string `json:"display_name" validate:"max=256"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url,max=1024"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin ban"`
}

type UpdateAccountRequest struct {
	ID          int64  `json:"id" validate:"gt=0"`
	DisplayName string `json:"display_name" validate:"max=256"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url,max=1024"`
	Profile     string `json:"profile" validate:"max=512"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin ban"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"max=256"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url,max=1024"`
	Profile     string `json:"profile" validate:"max=512"`
}

// AccountService covers administration and self-service profile
// operations. Authorization is the caller's job: these methods assume the
// access gate has already admitted the request.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	hasher      credentials.Hasher
	locks       *keylock.Table
	logger      logging.Logger
	now         func() time.Time
}

func NewAccountService(m repomanager.RepositoryManager, hasher credentials.Hasher, locks *keylock.Table, logger logging.Logger) *AccountService {
	return &AccountService{
		repomanager: m,
		hasher:      hasher,
		locks:       locks,
		logger:      logger.With("module", "accounts"),
		now:         time.Now,
	}
}

// AddAccount creates an account with the default password.
func (s *AccountService) AddAccount(ctx context.Context, req AddAccountRequest) (int64, error) {
	if isBlank(req.AccountName) {
		return 0, common.NewParamsError("parameters are empty")
	}
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
	}

	unlock, err := s.locks.Lock(ctx, accountNameKey(req.AccountName))
	if err != nil {
		return 0, common.NewSystemError("request canceled", err)
	}
	defer unlock()

	repo := s.repomanager.Accounts()
	n, err := repo.Count(ctx, models.AccountQuery{AccountName: req.AccountName})
	if err != nil {
		s.logger.Error(ctx, "count accounts failed", "err", err)
		return 0, common.NewSystemError("system error", err)
	}
	if n > 0 {
		return 0, common.NewParamsError("account already exists")
	}

	ts := timex.Millis(s.now())
	id, err := repo.Insert(ctx, &models.Account{
		AccountName:    req.AccountName,
		PasswordDigest: s.hasher.Digest(common.DefaultAccountPassword),
		DisplayName:    req.DisplayName,
		AvatarURL:      req.AvatarURL,
		Role:           role,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return 0, common.NewParamsError("account already exists")
		}
		s.logger.Error(ctx, "insert account failed", "err", err)
		return 0, common.NewSystemError("system error", err)
	}

	s.logger.Info(ctx, "account added", "account_id", id, "role", string(role))
	return id, nil
}

// DeleteAccount soft-deletes the account with id.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, common.NewParamsError("invalid id")
	}
	ok, err := s.repomanager.Accounts().SoftDeleteByID(ctx, id)
	if err != nil {
		s.logger.Error(ctx, "delete account failed", "account_id", id, "err", err)
		return false, common.NewSystemError("system error", err)
	}
	if !ok {
		return false, common.NewOperationError("account does not exist")
	}
	s.logger.Info(ctx, "account deleted", "account_id", id)
	return true, nil
}

// UpdateAccount changes the non-empty fields of req on account req.ID.
func (s *AccountService) UpdateAccount(ctx context.Context, req UpdateAccountRequest) (bool, error) {
	if req.ID <= 0 {
		return false, common.NewParamsError("invalid id")
	}
	if err := validateRequest(req); err != nil {
		return false, err
	}
	return s.update(ctx, &models.Account{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Profile:     req.Profile,
		Role:        models.Role(req.Role),
	})
}

// GetAccount returns the administrator view of account id.
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*models.AdminAccountView, error) {
	if id <= 0 {
		return nil, common.NewParamsError("invalid id")
	}
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewAdminAccountView(a), nil
}

func (s *AccountService) ListAccounts(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.AdminAccountView, error) {
	list, err := s.list(ctx, q, page)
	if err != nil {
		return nil, err
	}
	out := make([]*models.AdminAccountView, 0, len(list))
	for _, a := range list {
		out = append(out, models.NewAdminAccountView(a))
	}
	return out, nil
}

// CurrentAccount returns the redacted view of the resolved caller.
func (s *AccountService) CurrentAccount(ctx context.Context, caller *models.Account) (*models.AccountView, error) {
	if caller == nil {
		return nil, common.NewNotLoggedInError()
	}
	return models.NewAccountView(caller), nil
}

// UpdateMyProfile lets a caller edit their own display name, avatar and
// profile text. Role and credentials are not reachable from here.
func (s *AccountService) UpdateMyProfile(ctx context.Context, caller *models.Account, req UpdateProfileRequest) (bool, error) {
	if caller == nil {
		return false, common.NewNotLoggedInError()
	}
	if err := validateRequest(req); err != nil {
		return false, err
	}
	return s.update(ctx, &models.Account{
		ID:          caller.ID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Profile:     req.Profile,
	})
}

func (s *AccountService) GetAccountView(ctx context.Context, id int64) (*models.AccountView, error) {
	if id <= 0 {
		return nil, common.NewParamsError("invalid id")
	}
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewAccountView(a), nil
}

func (s *AccountService) ListAccountViews(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.AccountView, error) {
	if page.Limit <= 0 || page.Limit > MaxPublicPageSize {
		return nil, common.NewParamsError("page size must be between 1 and 20")
	}
	// Public listings cannot probe digests or external ids.
	q.PasswordDigest, q.UnionID, q.MpOpenID = "", "", ""
	list, err := s.list(ctx, q, page)
	if err != nil {
		return nil, err
	}
	return models.NewAccountViews(list), nil
}

// BootstrapAdmin makes sure an admin account named accountName exists with
// password. An existing account is promoted and its password reset. The
// bool result reports whether a new row was created.
func (s *AccountService) BootstrapAdmin(ctx context.Context, accountName, password string) (int64, bool, error) {
	if anyBlank(accountName, password) {
		return 0, false, common.NewParamsError("parameters are empty")
	}
	if runeLen(accountName) < common.MinAccountNameLength {
		return 0, false, common.NewParamsError("account name too short")
	}
	if runeLen(password) < common.MinPasswordLength {
		return 0, false, common.NewParamsError("password too short")
	}

	unlock, err := s.locks.Lock(ctx, accountNameKey(accountName))
	if err != nil {
		return 0, false, common.NewSystemError("request canceled", err)
	}
	defer unlock()

	var id int64
	var created bool
	ts := timex.Millis(s.now())
	digest := s.hasher.Digest(password)

	err = s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		existing, err := repo.FindOne(ctx, models.AccountQuery{AccountName: accountName})
		if err == nil {
			id = existing.ID
			_, err = repo.UpdateByID(ctx, &models.Account{ID: id, Role: models.RoleAdmin, PasswordDigest: digest, UpdatedAt: ts})
			return err
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		created = true
		id, err = repo.Insert(ctx, &models.Account{
			AccountName:    accountName,
			PasswordDigest: digest,
			DisplayName:    accountName,
			Role:           models.RoleAdmin,
			CreatedAt:      ts,
			UpdatedAt:      ts,
		})
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "bootstrap admin failed", "account_name", accountName, "err", err)
		return 0, false, common.NewSystemError("system error", err)
	}

	s.logger.Info(ctx, "admin account ready", "account_id", id, "created", created)
	return id, created, nil
}

func (s *AccountService) update(ctx context.Context, a *models.Account) (bool, error) {
	a.UpdatedAt = timex.Millis(s.now())
	ok, err := s.repomanager.Accounts().UpdateByID(ctx, a)
	if err != nil {
		s.logger.Error(ctx, "update account failed", "account_id", a.ID, "err", err)
		return false, common.NewSystemError("system error", err)
	}
	if !ok {
		return false, common.NewOperationError("account does not exist")
	}
	return true, nil
}

func (s *AccountService) find(ctx context.Context, id int64) (*models.Account, error) {
	a, err := s.repomanager.Accounts().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("account does not exist")
		}
		s.logger.Error(ctx, "get account failed", "account_id", id, "err", err)
		return nil, common.NewSystemError("system error", err)
	}
	return a, nil
}

func (s *AccountService) list(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.Account, error) {
	if page.Offset < 0 || page.Limit < 0 {
		return nil, common.NewParamsError("invalid page")
	}
	list, err := s.repomanager.Accounts().List(ctx, q, page)
	if err != nil {
		s.logger.Error(ctx, "list accounts failed", "err", err)
		return nil, common.NewSystemError("system error", err)
	}
	return list, nil
}
