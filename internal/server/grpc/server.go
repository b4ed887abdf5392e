package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services are the business services the gRPC layer fronts.
type Services struct {
	Gate    *services.Gate
	Auth    *services.AuthService
	Invites *services.InviteService
	Users   *services.UserAdminService
	Library *services.LibraryService
}

type GRPCServer struct {
	address string
	svc     Services
	logger  logging.Logger
	metrics *Metrics
	health  *health.Server
}

func NewGRPCServer(address string, l logging.Logger, svc Services, metrics *Metrics) *GRPCServer {
	return &GRPCServer{
		address: address,
		svc:     svc,
		logger:  l.With("module", "grpc_server"),
		metrics: metrics,
		health:  health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{s.loggingInterceptor}
	if s.metrics != nil {
		interceptors = append(interceptors, s.metrics.interceptor)
	}
	interceptors = append(interceptors, s.recoveryInterceptor, s.authInterceptor)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	srv.RegisterService(serviceDesc(), s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
