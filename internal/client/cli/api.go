package cli

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
)

// API is the part of client.GRPCClient the commands use.
type API interface {
	Register(ctx context.Context, accountName, password, confirmation string) (int64, error)
	Login(ctx context.Context, accountName, password string) (*pb.Account, error)
	LoginWithOAuthCode(ctx context.Context, code string) (*pb.Account, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*pb.Account, error)
	UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) error
	PresignAvatar(ctx context.Context, contentType string, size int64) (*pb.PresignAvatarResponse, error)
	UploadAvatar(ctx context.Context, contentType string, data []byte) (string, error)
	ListAccounts(ctx context.Context, req *pb.ListAccountsRequest, admin bool) ([]*pb.Account, error)
	GetAccount(ctx context.Context, id int64, admin bool) (*pb.Account, error)
	AddAccount(ctx context.Context, req *pb.AddAccountRequest) (int64, error)
	DeleteAccount(ctx context.Context, id int64) error
	UpdateAccount(ctx context.Context, req *pb.UpdateAccountRequest) error
	SetSession(handle string)
	Session() string
	Close() error
}

var _ API = (*client.GRPCClient)(nil)

// dial is replaced in tests.
var dial = func(addr string) (API, error) {
	c, err := client.NewGRPCClient(addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}
