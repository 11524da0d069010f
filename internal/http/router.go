package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go.ngs.io/almanac-api/internal/usecase"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	// AllowedOrigins for CORS; all origins when empty or "*".
	AllowedOrigins []string
	Logger         *slog.Logger
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(almanacUC *usecase.AlmanacUseCase, moonUC *usecase.MoonPhaseUseCase, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(almanacUC, moonUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	// Solar events.
	sun := v1.Group("/sun")
	sun.GET("/events", handler.GetSunEvents)

	// Lunar phases.
	moon := v1.Group("/moon")
	moon.GET("/phases", handler.GetMoonPhases)

	// Catalogues.
	v1.GET("/events", handler.GetEvents)
	v1.GET("/stations", handler.GetStations)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("request_id", c.GetString("request_id")),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
