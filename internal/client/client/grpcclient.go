// Package client talks to the gophauth account service over gRPC and keeps
// the session handle the server issues at login.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client pb.AccountServiceClient

	mu      sync.RWMutex
	session string
}

func withSessionHandle(ctx context.Context, handle string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.SessionHeaderName, handle)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if h := s.Session(); h != "" {
		ctx = withSessionHandle(ctx, h)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL without transport security.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.sessionInterceptor),
	}, opts...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAccountServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Session returns the current session handle, "" when logged out.
func (s *GRPCClient) Session() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *GRPCClient) SetSession(handle string) {
	s.mu.Lock()
	s.session = handle
	s.mu.Unlock()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrNotLoggedIn, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Register(ctx context.Context, accountName, password, confirmation string) (int64, error) {
	resp, err := s.client.Register(ctx, &pb.RegisterRequest{AccountName: accountName, Password: password, Confirmation: confirmation})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.ID, nil
}

// Login authenticates and adopts the session handle from the response
// header.
func (s *GRPCClient) Login(ctx context.Context, accountName, password string) (*pb.Account, error) {
	var header metadata.MD
	resp, err := s.client.Login(ctx, &pb.LoginRequest{AccountName: accountName, Password: password}, grpc.Header(&header))
	if err != nil {
		return nil, s.mapError(err)
	}
	s.adoptSession(header)
	return resp, nil
}

func (s *GRPCClient) LoginWithOAuthCode(ctx context.Context, code string) (*pb.Account, error) {
	var header metadata.MD
	resp, err := s.client.LoginWithOAuthCode(ctx, &pb.OAuthLoginRequest{Code: code}, grpc.Header(&header))
	if err != nil {
		return nil, s.mapError(err)
	}
	s.adoptSession(header)
	return resp, nil
}

func (s *GRPCClient) adoptSession(header metadata.MD) {
	if values := header.Get(common.SessionHeaderName); len(values) > 0 && values[0] != "" {
		s.SetSession(values[0])
	}
}

// Logout ends the session on the server and forgets the handle.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, err := s.client.Logout(ctx, &pb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	s.SetSession("")
	return nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*pb.Account, error) {
	resp, err := s.client.CurrentAccount(ctx, &pb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) error {
	if _, err := s.client.UpdateMyProfile(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

// PresignAvatar asks for an upload slot for size bytes of contentType.
func (s *GRPCClient) PresignAvatar(ctx context.Context, contentType string, size int64) (*pb.PresignAvatarResponse, error) {
	resp, err := s.client.PresignAvatarUpload(ctx, &pb.PresignAvatarRequest{ContentType: contentType, Size: size})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) UploadAvatar(ctx context.Context, contentType string, data []byte) (string, error) {
	resp, err := s.client.UploadAvatar(ctx, &pb.UploadAvatarRequest{ContentType: contentType, Data: data})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}

// ListAccounts uses the administrator listing when admin is set and the
// public one otherwise.
func (s *GRPCClient) ListAccounts(ctx context.Context, req *pb.ListAccountsRequest, admin bool) ([]*pb.Account, error) {
	call := s.client.ListAccountViews
	if admin {
		call = s.client.ListAccounts
	}
	resp, err := call(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Accounts, nil
}

// GetAccount fetches one account, with the administrator view when admin
// is set.
func (s *GRPCClient) GetAccount(ctx context.Context, id int64, admin bool) (*pb.Account, error) {
	call := s.client.GetAccountView
	if admin {
		call = s.client.GetAccount
	}
	resp, err := call(ctx, &pb.IDRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) AddAccount(ctx context.Context, req *pb.AddAccountRequest) (int64, error) {
	resp, err := s.client.AddAccount(ctx, req)
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.ID, nil
}

func (s *GRPCClient) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := s.client.DeleteAccount(ctx, &pb.IDRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) UpdateAccount(ctx context.Context, req *pb.UpdateAccountRequest) error {
	if _, err := s.client.UpdateAccount(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}
