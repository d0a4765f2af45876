package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"user-profile-service/cmd/api/di"
	"user-profile-service/internal/config"
)

// Server struct holds the three listeners of the service
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Health *health.Server
	HTTP   *http.Server // grpc-gateway REST surface and Swagger UI
	Gin    *http.Server

	gatewayConn *grpc.ClientConn
}

// New creates a new server instance from the wired container
func New(cfg *config.Config, l *zap.Logger, c *di.Container) (*Server, error) {
	grpcServer, healthServer := SetupGRPC(c.UserUC, l, c.GRPCRateLimiter, c.Metrics)

	httpServer, conn, err := SetupHTTPGateway(grpcDialAddress(cfg), httpAddress(cfg), l)
	if err != nil {
		return nil, err
	}

	return &Server{
		Config:      cfg,
		Logger:      l,
		GRPC:        grpcServer,
		Health:      healthServer,
		HTTP:        httpServer,
		Gin:         SetupGinServer(c.GinHandler, c.Limiter, c.Metrics, c.Registry, ginAddress(cfg), l),
		gatewayConn: conn,
	}, nil
}

// Start binds all listeners and serves until Shutdown is called.
// It returns as soon as any listener fails.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	errCh := make(chan error, 3)
	go func() {
		s.Logger.Info("gRPC server running", zap.String("address", grpcAddress(s.Config)))
		if err := s.GRPC.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		s.Logger.Info("REST gateway running", zap.String("address", s.HTTP.Addr))
		errCh <- serveHTTP("REST gateway", s.HTTP)
	}()
	go func() {
		s.Logger.Info("Gin REST API running", zap.String("address", s.Gin.Addr))
		errCh <- serveHTTP("gin", s.Gin)
	}()

	for i := 0; i < 3; i++ {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.Health != nil {
		s.Health.Shutdown()
	}

	if s.HTTP != nil {
		s.Logger.Info("shutting down HTTP server...")
		if err := s.HTTP.Shutdown(ctx); err != nil {
			s.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			s.Logger.Error("failed to shutdown Gin server", zap.Error(err))
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	if s.gatewayConn != nil {
		if err := s.gatewayConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("gateway connection close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func serveHTTP(name string, srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

// grpcDialAddress is the loopback address the gateway forwards to.
func grpcDialAddress(cfg *config.Config) string {
	return "localhost:" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}

func ginAddress(cfg *config.Config) string {
	return ":" + cfg.App.GinPort
}
