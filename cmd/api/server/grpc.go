package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "user-profile-service/internal/adapter/grpc"
	"user-profile-service/internal/adapter/grpc/middleware"
	"user-profile-service/internal/metrics"
	"user-profile-service/internal/usecase/user"
	"user-profile-service/pkg/logger"
)

// SetupGRPC creates the gRPC server with the user service and the standard health service registered.
func SetupGRPC(userUC user.Usecase, l *zap.Logger, rateLimiter *middleware.RateLimiter, recorder metrics.Recorder) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(l),
			logger.RequestIDInterceptor(),
			middleware.LoggingInterceptor(l),
			middleware.MetricsInterceptor(recorder),
			rateLimiter.UnaryInterceptor(),
		),
	)
	grpcadapter.RegisterUserServiceServer(grpcServer, grpcadapter.NewUserServiceServer(userUC, l))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}
