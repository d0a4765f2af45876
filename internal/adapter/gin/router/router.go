package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"user-profile-service/internal/adapter/gin/handler"
	"user-profile-service/internal/adapter/gin/middleware"
	"user-profile-service/internal/metrics"
	"user-profile-service/pkg/ratelimit"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "user-profile-service-gin"

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	limiter *ratelimit.Limiter,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	var recorder metrics.Recorder
	if collector != nil {
		recorder = collector
	}

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(recorder))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	// API v1 routes, rate limited
	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimiter(limiter, recorder, log))
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/firebase/:uid", userHandler.GetUserByFirebaseUID)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	return router
}
