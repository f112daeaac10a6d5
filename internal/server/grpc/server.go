package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/access"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

// Services bundles the business services exposed over gRPC. Avatars and
// External may be nil; their methods then fail with FailedPrecondition.
type Services struct {
	Registration *services.RegistrationService
	Auth         *services.AuthService
	External     *services.ExternalLoginService
	Accounts     *services.AccountService
	Avatars      *services.AvatarService
}

type GRPCServer struct {
	address        string
	maxRecvMsgSize int
	gate           *access.Gate
	services       Services
	logger         logging.Logger
}

var _ pb.AccountServiceServer = (*GRPCServer)(nil)

// NewGRPCServer serves on address a. maxRecvMsgSize of zero keeps the gRPC
// default receive limit.
func NewGRPCServer(a string, maxRecvMsgSize int, l logging.Logger, gate *access.Gate, svc Services) *GRPCServer {
	return &GRPCServer{
		address:        a,
		maxRecvMsgSize: maxRecvMsgSize,
		logger:         l.With("module", "grpc_server"),
		gate:           gate,
		services:       svc,
	}
}

// defaultMaxRecvMsgSize is the receive limit grpc-go applies by default.
const defaultMaxRecvMsgSize = 4 << 20

// MaxRecvMsgSize returns a receive limit large enough for an UploadAvatar
// request carrying avatarMaxBytes of image data. Bytes travel base64 encoded
// inside the message, so the payload grows by a third, plus room for the
// rest of the request.
func MaxRecvMsgSize(avatarMaxBytes int64) int {
	n := int(avatarMaxBytes*4/3) + 1<<20
	if n < defaultMaxRecvMsgSize {
		return defaultMaxRecvMsgSize
	}
	return n
}

// newServer builds a grpc.Server with the access interceptor and the
// account service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(s.accessInterceptor)}
	if s.maxRecvMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(s.maxRecvMsgSize))
	}
	srv := grpc.NewServer(opts...)
	pb.RegisterAccountServiceServer(srv, s)
	return srv
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
