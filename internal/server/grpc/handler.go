package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/access"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.IDResponse, error) {
	id, err := s.services.Registration.Register(ctx, req.AccountName, req.Password, req.Confirmation)
	if err != nil {
		return nil, err
	}
	return &pb.IDResponse{ID: id}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.Account, error) {
	view, err := s.services.Auth.Login(ctx, sessionHandle(ctx), req.AccountName, req.Password)
	if err != nil {
		return nil, err
	}
	return toAccount(view), nil
}

func (s *GRPCServer) LoginWithOAuthCode(ctx context.Context, req *pb.OAuthLoginRequest) (*pb.Account, error) {
	if s.services.External == nil {
		return nil, common.NewOperationError("oauth login is not configured")
	}
	view, err := s.services.External.LoginWithOAuthCode(ctx, sessionHandle(ctx), req.Code)
	if err != nil {
		return nil, err
	}
	return toAccount(view), nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *pb.Empty) (*pb.OKResponse, error) {
	ok, err := s.services.Auth.Logout(ctx, sessionHandle(ctx))
	if err != nil {
		return nil, err
	}
	return &pb.OKResponse{OK: ok}, nil
}

func (s *GRPCServer) CurrentAccount(ctx context.Context, _ *pb.Empty) (*pb.Account, error) {
	caller, _ := access.CallerFromContext(ctx)
	view, err := s.services.Accounts.CurrentAccount(ctx, caller)
	if err != nil {
		return nil, err
	}
	return toAccount(view), nil
}

func (s *GRPCServer) UpdateMyProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.OKResponse, error) {
	caller, _ := access.CallerFromContext(ctx)
	ok, err := s.services.Accounts.UpdateMyProfile(ctx, caller, services.UpdateProfileRequest{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Profile:     req.Profile,
	})
	if err != nil {
		return nil, err
	}
	return &pb.OKResponse{OK: ok}, nil
}

func (s *GRPCServer) UploadAvatar(ctx context.Context, req *pb.UploadAvatarRequest) (*pb.UploadAvatarResponse, error) {
	if s.services.Avatars == nil {
		return nil, common.NewOperationError("avatar storage is not configured")
	}
	caller, _ := access.CallerFromContext(ctx)
	url, err := s.services.Avatars.UploadAvatar(ctx, caller, req.ContentType, req.Data)
	if err != nil {
		return nil, err
	}
	return &pb.UploadAvatarResponse{URL: url}, nil
}

func (s *GRPCServer) PresignAvatarUpload(ctx context.Context, req *pb.PresignAvatarRequest) (*pb.PresignAvatarResponse, error) {
	if s.services.Avatars == nil {
		return nil, common.NewOperationError("avatar storage is not configured")
	}
	caller, _ := access.CallerFromContext(ctx)
	p, err := s.services.Avatars.PresignAvatarUpload(ctx, caller, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}
	return &pb.PresignAvatarResponse{
		UploadURL: p.UploadURL,
		Key:       p.Key,
		PublicURL: p.PublicURL,
		ExpiresAt: timex.Millis(p.ExpiresAt),
	}, nil
}

func (s *GRPCServer) GetAccountView(ctx context.Context, req *pb.IDRequest) (*pb.Account, error) {
	view, err := s.services.Accounts.GetAccountView(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toAccount(view), nil
}

func (s *GRPCServer) ListAccountViews(ctx context.Context, req *pb.ListAccountsRequest) (*pb.ListAccountsResponse, error) {
	list, err := s.services.Accounts.ListAccountViews(ctx, toQuery(req), toPage(req))
	if err != nil {
		return nil, err
	}
	resp := &pb.ListAccountsResponse{Accounts: make([]*pb.Account, 0, len(list))}
	for _, v := range list {
		resp.Accounts = append(resp.Accounts, toAccount(v))
	}
	return resp, nil
}

func (s *GRPCServer) AddAccount(ctx context.Context, req *pb.AddAccountRequest) (*pb.IDResponse, error) {
	id, err := s.services.Accounts.AddAccount(ctx, services.AddAccountRequest{
		AccountName: req.AccountName,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Role:        req.Role,
	})
	if err != nil {
		return nil, err
	}
	return &pb.IDResponse{ID: id}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *pb.IDRequest) (*pb.OKResponse, error) {
	ok, err := s.services.Accounts.DeleteAccount(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &pb.OKResponse{OK: ok}, nil
}

func (s *GRPCServer) UpdateAccount(ctx context.Context, req *pb.UpdateAccountRequest) (*pb.OKResponse, error) {
	ok, err := s.services.Accounts.UpdateAccount(ctx, services.UpdateAccountRequest{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Profile:     req.Profile,
		Role:        req.Role,
	})
	if err != nil {
		return nil, err
	}
	return &pb.OKResponse{OK: ok}, nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *pb.IDRequest) (*pb.Account, error) {
	view, err := s.services.Accounts.GetAccount(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toAdminAccount(view), nil
}

func (s *GRPCServer) ListAccounts(ctx context.Context, req *pb.ListAccountsRequest) (*pb.ListAccountsResponse, error) {
	list, err := s.services.Accounts.ListAccounts(ctx, toQuery(req), toPage(req))
	if err != nil {
		return nil, err
	}
	resp := &pb.ListAccountsResponse{Accounts: make([]*pb.Account, 0, len(list))}
	for _, v := range list {
		resp.Accounts = append(resp.Accounts, toAdminAccount(v))
	}
	return resp, nil
}

func toAccount(v *models.AccountView) *pb.Account {
	if v == nil {
		return &pb.Account{}
	}
	return &pb.Account{
		ID:          v.ID,
		AccountName: v.AccountName,
		DisplayName: v.DisplayName,
		AvatarURL:   v.AvatarURL,
		Profile:     v.Profile,
		Role:        string(v.Role),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toAdminAccount(v *models.AdminAccountView) *pb.Account {
	if v == nil {
		return &pb.Account{}
	}
	a := toAccount(&v.AccountView)
	a.UnionID = v.UnionID
	a.MpOpenID = v.MpOpenID
	return a
}

// toQuery maps a list request to a store query. An unknown role is passed
// through unchanged and simply matches nothing.
func toQuery(req *pb.ListAccountsRequest) models.AccountQuery {
	q := models.AccountQuery{
		AccountName: req.AccountName,
		UnionID:     req.UnionID,
		DisplayName: req.DisplayName,
		Role:        models.Role(req.Role),
	}
	if r, ok := models.ParseRole(req.Role); ok {
		q.Role = r
	}
	return q
}

func toPage(req *pb.ListAccountsRequest) models.Page {
	return models.Page{Limit: req.Limit, Offset: req.Offset}
}
