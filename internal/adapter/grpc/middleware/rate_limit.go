package middleware

import (
	"context"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-profile-service/internal/metrics"
	"user-profile-service/pkg/ratelimit"
)

// RateLimiter applies the shared token bucket to unary gRPC calls.
type RateLimiter struct {
	limiter  *ratelimit.Limiter
	recorder metrics.Recorder
	log      *zap.Logger
}

// NewRateLimiter creates a new rate limiter interceptor. recorder may be nil.
func NewRateLimiter(limiter *ratelimit.Limiter, recorder metrics.Recorder, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiter:  limiter,
		recorder: recorder,
		log:      log,
	}
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
// Buckets are keyed by full method and client IP. Redis failures fail open.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !rl.limiter.Enabled() {
			return handler(ctx, req)
		}

		clientIP := clientIP(ctx)
		key := fmt.Sprintf("grpc:%s:%s", info.FullMethod, clientIP)

		allowed, err := rl.limiter.Allow(ctx, key)
		if err != nil {
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if !allowed {
			cfg := rl.limiter.Config()
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
			)
			if rl.recorder != nil {
				rl.recorder.RecordRateLimited(metrics.TransportGRPC)
			}
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				cfg.RequestsPerSecond, cfg.BurstCapacity)
		}

		return handler(ctx, req)
	}
}

// clientIP extracts the client IP address from the gRPC context.
// Requests relayed by the gateway carry the original address in x-forwarded-for.
func clientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			first, _, _ := strings.Cut(xff[0], ",")
			return strings.TrimSpace(first)
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}

	return "unknown"
}
