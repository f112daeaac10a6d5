package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps an account error kind to a gRPC status. Causes are logged,
// never sent.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	reason := common.Reason(err)
	switch {
	case errors.Is(err, common.ErrParams):
		return status.Error(codes.InvalidArgument, reason)
	case errors.Is(err, common.ErrNotLoggedIn):
		return status.Error(codes.Unauthenticated, reason)
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, reason)
	case errors.Is(err, common.ErrOperation):
		return status.Error(codes.FailedPrecondition, reason)
	case errors.Is(err, common.ErrResourceNotFound):
		return status.Error(codes.NotFound, reason)
	case errors.Is(err, common.ErrSystem):
		s.logger.Error(ctx, "request failed", "method", method, "err", err)
		return status.Error(codes.Internal, reason)
	}

	s.logger.Error(ctx, "request failed", "method", method, "err", err)
	return status.Error(codes.Internal, "internal error")
}
