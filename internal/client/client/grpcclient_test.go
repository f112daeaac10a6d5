package client

import (
	"context"
	"net"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeServer implements only the methods the tests call.
type fakeServer struct {
	pb.AccountServiceServer

	seen     []string
	listed   bool
	adminErr error
}

func (f *fakeServer) handle(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.SessionHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *fakeServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.Account, error) {
	if req.Password != "secret1" {
		return nil, status.Error(codes.InvalidArgument, "account does not exist or password incorrect")
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.SessionHeaderName, "handle-1"))
	return &pb.Account{ID: 7, AccountName: req.AccountName, Role: "user"}, nil
}

func (f *fakeServer) CurrentAccount(ctx context.Context, _ *pb.Empty) (*pb.Account, error) {
	h := f.handle(ctx)
	f.seen = append(f.seen, h)
	if h == "" {
		return nil, status.Error(codes.Unauthenticated, "not logged in")
	}
	return &pb.Account{ID: 7, AccountName: "alice", Role: "user"}, nil
}

func (f *fakeServer) Logout(ctx context.Context, _ *pb.Empty) (*pb.OKResponse, error) {
	f.seen = append(f.seen, f.handle(ctx))
	return &pb.OKResponse{OK: true}, nil
}

func (f *fakeServer) ListAccounts(context.Context, *pb.ListAccountsRequest) (*pb.ListAccountsResponse, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.listed = true
	return &pb.ListAccountsResponse{Accounts: []*pb.Account{{ID: 1}}}, nil
}

func (f *fakeServer) ListAccountViews(context.Context, *pb.ListAccountsRequest) (*pb.ListAccountsResponse, error) {
	return &pb.ListAccountsResponse{Accounts: []*pb.Account{{ID: 1}, {ID: 2}}}, nil
}

func newTestClient(t *testing.T, f *fakeServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	pb.RegisterAccountServiceServer(s, f)
	go func() { _ = s.Serve(lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		s.Stop()
	})
	return c
}

func TestLogin_AdoptsSessionAndAttachesIt(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	ctx := context.Background()

	acc, err := c.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.AccountName)
	assert.Equal(t, "handle-1", c.Session())

	me, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), me.ID)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Session())

	_, err = c.WhoAmI(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	assert.Equal(t, []string{"handle-1", "handle-1", ""}, f.seen)
}

func TestLogin_RejectedKeepsServerReason(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "account does not exist or password incorrect")
	assert.Empty(t, c.Session())
}

func TestSetSession_UsedOnNextCall(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)

	c.SetSession("stored-handle")
	_, err := c.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stored-handle"}, f.seen)
}

func TestListAccounts_AdminAndPublic(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	ctx := context.Background()

	public, err := c.ListAccounts(ctx, &pb.ListAccountsRequest{Limit: 10}, false)
	require.NoError(t, err)
	assert.Len(t, public, 2)
	assert.False(t, f.listed)

	admin, err := c.ListAccounts(ctx, &pb.ListAccountsRequest{Limit: 10}, true)
	require.NoError(t, err)
	assert.Len(t, admin, 1)
	assert.True(t, f.listed)

	f.adminErr = status.Error(codes.PermissionDenied, "insufficient permission")
	_, err = c.ListAccounts(ctx, &pb.ListAccountsRequest{Limit: 10}, true)
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "insufficient permission")
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrUnavailable},
		{"unauthenticated", status.Error(codes.Unauthenticated, "not logged in"), ErrNotLoggedIn},
		{"permission", status.Error(codes.PermissionDenied, "account banned"), ErrPermissionDenied},
		{"invalid", status.Error(codes.InvalidArgument, "password too short"), ErrInvalidArgument},
		{"precondition", status.Error(codes.FailedPrecondition, "not logged in"), ErrRejected},
		{"not found", status.Error(codes.NotFound, "account not found"), ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.mapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, c.mapError(nil))
	err := c.mapError(status.Error(codes.Internal, "boom"))
	assert.Contains(t, err.Error(), "rpc error")
}
