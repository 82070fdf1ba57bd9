// Package grpc exposes the services over the commoni.v1.Monitoring gRPC
// service.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/commoni/commoni/internal/api"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/models"
	"github.com/commoni/commoni/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Authenticator is the part of services.AuthService the transport needs.
type Authenticator interface {
	Login(ctx context.Context, userID, password string) (*services.TokenSet, error)
	RenewToken(ctx context.Context, refreshToken string) (*services.TokenSet, error)
	RemoveToken(ctx context.Context, accessToken string) error
	VerifyAccessToken(ctx context.Context, token string) (*auth.ParsedToken, error)
	VerifyAgentToken(ctx context.Context, token string) (*auth.ParsedToken, error)
}

type HostManager interface {
	RegisterHost(ctx context.Context, userID string, info services.HostInfo) (*models.Host, *services.AgentToken, error)
	ListHosts(ctx context.Context, userID string) ([]*models.Host, error)
	GetHost(ctx context.Context, userID string, hostID int64) (*models.Host, error)
	UpdateHost(ctx context.Context, userID string, hostID int64, upd services.HostUpdate) (*models.Host, error)
	DeleteHost(ctx context.Context, userID string, hostID int64) error
}

type ReadingRecorder interface {
	Push(ctx context.Context, hostID int64, sample services.Sample) (*models.Reading, error)
	List(ctx context.Context, userID string, hostID int64, q services.ReadingQuery) ([]*models.Reading, error)
	Latest(ctx context.Context, userID string, hostID int64) (*models.Reading, error)
}

// UserManager serves the caller's own account.
type UserManager interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, upd services.UserUpdate) (*models.User, error)
}

type GRPCServer struct {
	api.UnimplementedMonitoringServer
	address  string
	auth     Authenticator
	hosts    HostManager
	readings ReadingRecorder
	users    UserManager
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as Authenticator, hs HostManager, rs ReadingRecorder, us UserManager) *GRPCServer {
	if l == nil {
		l = logging.Nop{}
	}
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		auth:     as,
		hosts:    hs,
		readings: rs,
		users:    us,
	}
}

// NewServer returns a grpc.Server with the service and its interceptors
// registered, ready to Serve on any listener.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor),
	}, opts...)
	srv := grpc.NewServer(opts...)
	api.RegisterMonitoringServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

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

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	ctx = logging.ContextWith(ctx, "method", info.FullMethod)
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
