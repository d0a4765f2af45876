package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-profile-service/cmd/api/infrastructure"
	"user-profile-service/internal/adapter/cache"
	"user-profile-service/internal/adapter/db/postgres"
	ginhandler "user-profile-service/internal/adapter/gin/handler"
	"user-profile-service/internal/adapter/grpc/middleware"
	"user-profile-service/internal/adapter/repository/cached"
	"user-profile-service/internal/config"
	"user-profile-service/internal/metrics"
	"user-profile-service/internal/usecase/user"
	"user-profile-service/pkg/ratelimit"
	redisclient "user-profile-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	DB              *gorm.DB
	RedisClient     *redisclient.Client // nil when Redis is disabled
	UserUC          user.Usecase
	Limiter         *ratelimit.Limiter
	GRPCRateLimiter *middleware.RateLimiter
	GinHandler      *ginhandler.UserHandler
	Registry        *prometheus.Registry
	Metrics         *metrics.Collector
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	var (
		userCache cache.UserCache
		rawClient *goredis.Client
	)
	if rdb != nil {
		rawClient = rdb.Client
		userCache = cache.NewRedisUserCache(rawClient, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
	}

	dbRepo := postgres.NewUserRepoPG(db, l)
	repo := cached.NewCachedUserRepository(dbRepo, userCache, l)
	userUC := user.New(repo, l)

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(registry)

	limiter := ratelimit.New(rawClient, ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
		Enabled:           cfg.RateLimit.Enabled,
	})

	return &Container{
		Config:          cfg,
		Logger:          l,
		DB:              db,
		RedisClient:     rdb,
		UserUC:          userUC,
		Limiter:         limiter,
		GRPCRateLimiter: middleware.NewRateLimiter(limiter, collector, l),
		GinHandler:      ginhandler.NewUserHandler(userUC, l),
		Registry:        registry,
		Metrics:         collector,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
