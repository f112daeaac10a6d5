package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/access"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methodRequirements declares the access requirement of every method.
// A method missing here is refused.
var methodRequirements = map[string]access.Requirement{
	pb.FullMethod(pb.MethodRegister):            access.None,
	pb.FullMethod(pb.MethodLogin):               access.None,
	pb.FullMethod(pb.MethodLoginWithOAuthCode):  access.None,
	pb.FullMethod(pb.MethodLogout):              access.None,
	pb.FullMethod(pb.MethodGetAccountView):      access.None,
	pb.FullMethod(pb.MethodListAccountViews):    access.None,
	pb.FullMethod(pb.MethodCurrentAccount):      access.LoggedIn,
	pb.FullMethod(pb.MethodUpdateMyProfile):     access.LoggedIn,
	pb.FullMethod(pb.MethodUploadAvatar):        access.LoggedIn,
	pb.FullMethod(pb.MethodPresignAvatarUpload): access.LoggedIn,
	pb.FullMethod(pb.MethodAddAccount):          access.Admin,
	pb.FullMethod(pb.MethodDeleteAccount):       access.Admin,
	pb.FullMethod(pb.MethodUpdateAccount):       access.Admin,
	pb.FullMethod(pb.MethodGetAccount):          access.Admin,
	pb.FullMethod(pb.MethodListAccounts):        access.Admin,
}

// sessionMinting lists the login methods. They get a fresh handle when the
// caller sent none, and echo the handle in the response header.
var sessionMinting = map[string]bool{
	pb.FullMethod(pb.MethodLogin):              true,
	pb.FullMethod(pb.MethodLoginWithOAuthCode): true,
}

type ctxKey struct{}

func withSessionHandle(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, ctxKey{}, handle)
}

func sessionHandle(ctx context.Context) string {
	h, _ := ctx.Value(ctxKey{}).(string)
	return h
}

func incomingSessionHandle(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.SessionHeaderName)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) accessInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	requirement, ok := methodRequirements[info.FullMethod]
	if !ok {
		s.logger.Warn(ctx, "method without access requirement", "method", info.FullMethod)
		return nil, status.Error(codes.PermissionDenied, "insufficient permission")
	}

	handle := incomingSessionHandle(ctx)
	if sessionMinting[info.FullMethod] {
		if handle == "" {
			handle = uuid.NewString()
		}
		if err := grpc.SetHeader(ctx, metadata.Pairs(common.SessionHeaderName, handle)); err != nil {
			s.logger.Warn(ctx, "set session header failed", "err", err)
		}
	}
	ctx = withSessionHandle(ctx, handle)

	decision := s.gate.Evaluate(ctx, handle, requirement)
	if decision.State != access.Authorized {
		return nil, s.toStatus(ctx, info.FullMethod, decision.Err)
	}
	ctx = access.WithCaller(ctx, decision.Caller)

	resp, err := handler(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, info.FullMethod, err)
	}
	return resp, nil
}
