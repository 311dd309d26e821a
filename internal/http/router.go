package http

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go.ngs.io/tidewatch/internal/metrics"
	"go.ngs.io/tidewatch/internal/usecase"
)

// SetupRouter creates and configures the Gin router. An empty
// allowedOrigins allows every origin.
func SetupRouter(tides *usecase.TideService, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), requestLatency())

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(tides)

	// API v1 routes.
	v1 := router.Group("/v1")
	// Stations.
	stations := v1.Group("/stations")
	stations.GET("", handler.ListStations)
	stations.GET("/nearest", handler.NearestStation)
	stations.GET("/:name", handler.GetStation)

	// Tide tables.
	tidesGroup := v1.Group("/tides")
	tidesGroup.GET("/table", handler.GetTable)
	tidesGroup.GET("/verify", handler.Verify)

	// Health check and metrics.
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestLogger logs each request through zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// requestLatency observes request latency by route.
func requestLatency() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequestLatency(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
