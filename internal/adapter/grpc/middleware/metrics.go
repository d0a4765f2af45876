package middleware

import (
	"context"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"user-profile-service/internal/metrics"
)

// MetricsInterceptor records call count and latency per method and status code.
func MetricsInterceptor(recorder metrics.Recorder) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		recorder.RecordRequest(metrics.TransportGRPC, path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
