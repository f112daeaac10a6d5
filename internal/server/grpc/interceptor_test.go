package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInterceptor_UnknownMethodRefused(t *testing.T) {
	s := NewGRPCServer("", 0, logging.Nop{}, nil, Services{})

	info := &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/OtherMethod"}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for an unknown method")
		return nil, nil
	}

	_, err := s.accessInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestInterceptor_GuardedMethodSkipsHandler(t *testing.T) {
	ts := newTestServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodListAccounts)}
	called := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return nil, nil
	}

	_, err := ts.server.accessInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.False(t, called)
}

func TestEveryMethodHasRequirement(t *testing.T) {
	for _, m := range pb.AccountService_ServiceDesc.Methods {
		_, ok := methodRequirements[pb.FullMethod(m.MethodName)]
		assert.True(t, ok, m.MethodName)
	}
}

func TestToStatus(t *testing.T) {
	s := NewGRPCServer("", 0, logging.Nop{}, nil, Services{})
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"params", common.NewParamsError("password too short"), codes.InvalidArgument, "password too short"},
		{"not logged in", common.NewNotLoggedInError(), codes.Unauthenticated, "not logged in"},
		{"forbidden", common.NewForbiddenError("account banned, login refused"), codes.PermissionDenied, "account banned, login refused"},
		{"operation", common.NewOperationError("not logged in"), codes.FailedPrecondition, "not logged in"},
		{"not found", common.NewNotFoundError("account does not exist"), codes.NotFound, "account does not exist"},
		{"system", common.NewSystemError("login failed, system error", errors.New("dial tcp: refused")), codes.Internal, "login failed, system error"},
		{"foreign", errors.New("dial tcp: refused"), codes.Internal, "internal error"},
		{"status passthrough", status.Error(codes.Canceled, "canceled"), codes.Canceled, "canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := status.Convert(s.toStatus(ctx, "/m", tt.err))
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}
}
