package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "accounts.v1.AccountService"

const (
	MethodRegister            = "Register"
	MethodLogin               = "Login"
	MethodLoginWithOAuthCode  = "LoginWithOAuthCode"
	MethodLogout              = "Logout"
	MethodCurrentAccount      = "CurrentAccount"
	MethodUpdateMyProfile     = "UpdateMyProfile"
	MethodUploadAvatar        = "UploadAvatar"
	MethodPresignAvatarUpload = "PresignAvatarUpload"
	MethodGetAccountView      = "GetAccountView"
	MethodListAccountViews    = "ListAccountViews"
	MethodAddAccount          = "AddAccount"
	MethodDeleteAccount       = "DeleteAccount"
	MethodUpdateAccount       = "UpdateAccount"
	MethodGetAccount          = "GetAccount"
	MethodListAccounts        = "ListAccounts"
)

// FullMethod returns the gRPC path of method, e.g.
// "/accounts.v1.AccountService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AccountServiceServer is implemented by the gophauth server.
type AccountServiceServer interface {
	Register(context.Context, *RegisterRequest) (*IDResponse, error)
	Login(context.Context, *LoginRequest) (*Account, error)
	LoginWithOAuthCode(context.Context, *OAuthLoginRequest) (*Account, error)
	Logout(context.Context, *Empty) (*OKResponse, error)
	CurrentAccount(context.Context, *Empty) (*Account, error)
	UpdateMyProfile(context.Context, *UpdateProfileRequest) (*OKResponse, error)
	UploadAvatar(context.Context, *UploadAvatarRequest) (*UploadAvatarResponse, error)
	PresignAvatarUpload(context.Context, *PresignAvatarRequest) (*PresignAvatarResponse, error)
	GetAccountView(context.Context, *IDRequest) (*Account, error)
	ListAccountViews(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	AddAccount(context.Context, *AddAccountRequest) (*IDResponse, error)
	DeleteAccount(context.Context, *IDRequest) (*OKResponse, error)
	UpdateAccount(context.Context, *UpdateAccountRequest) (*OKResponse, error)
	GetAccount(context.Context, *IDRequest) (*Account, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
}

// unary adapts a typed server method to a grpc.MethodDesc. The request is
// decoded before the interceptor chain runs and the response is encoded
// inside it.
func unary[Req, Resp any](name string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			req := new(Req)
			if err := Decode(in, req); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, r any) (any, error) {
				resp, err := call(srv.(AccountServiceServer), ctx, r.(*Req))
				if err != nil {
					return nil, err
				}
				return Encode(resp)
			}
			if interceptor == nil {
				return handler(ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, req, info, handler)
		},
	}
}

var AccountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, AccountServiceServer.Register),
		unary(MethodLogin, AccountServiceServer.Login),
		unary(MethodLoginWithOAuthCode, AccountServiceServer.LoginWithOAuthCode),
		unary(MethodLogout, AccountServiceServer.Logout),
		unary(MethodCurrentAccount, AccountServiceServer.CurrentAccount),
		unary(MethodUpdateMyProfile, AccountServiceServer.UpdateMyProfile),
		unary(MethodUploadAvatar, AccountServiceServer.UploadAvatar),
		unary(MethodPresignAvatarUpload, AccountServiceServer.PresignAvatarUpload),
		unary(MethodGetAccountView, AccountServiceServer.GetAccountView),
		unary(MethodListAccountViews, AccountServiceServer.ListAccountViews),
		unary(MethodAddAccount, AccountServiceServer.AddAccount),
		unary(MethodDeleteAccount, AccountServiceServer.DeleteAccount),
		unary(MethodUpdateAccount, AccountServiceServer.UpdateAccount),
		unary(MethodGetAccount, AccountServiceServer.GetAccount),
		unary(MethodListAccounts, AccountServiceServer.ListAccounts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "accounts/v1/accounts.proto",
}

func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountService_ServiceDesc, srv)
}

// AccountServiceClient is the client API for accounts.v1.AccountService.
type AccountServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*IDResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*Account, error)
	LoginWithOAuthCode(ctx context.Context, in *OAuthLoginRequest, opts ...grpc.CallOption) (*Account, error)
	Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*OKResponse, error)
	CurrentAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Account, error)
	UpdateMyProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*OKResponse, error)
	UploadAvatar(ctx context.Context, in *UploadAvatarRequest, opts ...grpc.CallOption) (*UploadAvatarResponse, error)
	PresignAvatarUpload(ctx context.Context, in *PresignAvatarRequest, opts ...grpc.CallOption) (*PresignAvatarResponse, error)
	GetAccountView(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Account, error)
	ListAccountViews(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error)
	AddAccount(ctx context.Context, in *AddAccountRequest, opts ...grpc.CallOption) (*IDResponse, error)
	DeleteAccount(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*OKResponse, error)
	UpdateAccount(ctx context.Context, in *UpdateAccountRequest, opts ...grpc.CallOption) (*OKResponse, error)
	GetAccount(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Account, error)
	ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error)
}

type accountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) AccountServiceClient {
	return &accountServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	req, err := Encode(in)
	if err != nil {
		return nil, err
	}
	reply := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), req, reply, opts...); err != nil {
		return nil, err
	}
	out := new(Resp)
	if err := Decode(reply, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *accountServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*IDResponse, error) {
	return invoke[IDResponse](ctx, c.cc, MethodRegister, in, opts...)
}

func (c *accountServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodLogin, in, opts...)
}

func (c *accountServiceClient) LoginWithOAuthCode(ctx context.Context, in *OAuthLoginRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodLoginWithOAuthCode, in, opts...)
}

func (c *accountServiceClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodLogout, in, opts...)
}

func (c *accountServiceClient) CurrentAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodCurrentAccount, in, opts...)
}

func (c *accountServiceClient) UpdateMyProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodUpdateMyProfile, in, opts...)
}

func (c *accountServiceClient) UploadAvatar(ctx context.Context, in *UploadAvatarRequest, opts ...grpc.CallOption) (*UploadAvatarResponse, error) {
	return invoke[UploadAvatarResponse](ctx, c.cc, MethodUploadAvatar, in, opts...)
}

func (c *accountServiceClient) PresignAvatarUpload(ctx context.Context, in *PresignAvatarRequest, opts ...grpc.CallOption) (*PresignAvatarResponse, error) {
	return invoke[PresignAvatarResponse](ctx, c.cc, MethodPresignAvatarUpload, in, opts...)
}

func (c *accountServiceClient) GetAccountView(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodGetAccountView, in, opts...)
}

func (c *accountServiceClient) ListAccountViews(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c.cc, MethodListAccountViews, in, opts...)
}

func (c *accountServiceClient) AddAccount(ctx context.Context, in *AddAccountRequest, opts ...grpc.CallOption) (*IDResponse, error) {
	return invoke[IDResponse](ctx, c.cc, MethodAddAccount, in, opts...)
}

func (c *accountServiceClient) DeleteAccount(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodDeleteAccount, in, opts...)
}

func (c *accountServiceClient) UpdateAccount(ctx context.Context, in *UpdateAccountRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodUpdateAccount, in, opts...)
}

func (c *accountServiceClient) GetAccount(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodGetAccount, in, opts...)
}

func (c *accountServiceClient) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c.cc, MethodListAccounts, in, opts...)
}
