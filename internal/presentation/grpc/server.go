package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/gnavadev/fraud-watch/pkg/tlsutil"
)

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server wraps the gRPC server with provider service handlers.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	address    string
}

// NewServer creates a new gRPC server for the provider service. TLS is
// enabled when both a certificate and a key file are configured.
func NewServer(handler *ProviderServiceHandler, cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(loggingInterceptor(logger)),
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerCredentials(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load gRPC TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterProviderServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
		address:    cfg.Address,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", listener.Addr().String()),
	)
	return s.grpcServer.Serve(listener)
}

// Stop marks the service not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
