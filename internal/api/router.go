package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/config"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. db may be nil.
func NewRouter(services *service.Services, cfg *config.Config, db HealthChecker, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	blogHandler := NewContentHandler(services.Blogs, cfg, log)
	videoHandler := NewContentHandler(services.Videos, cfg, log)
	sessionHandler := NewSessionHandler(services.Session, log)
	eventHandler := NewEventHandler(services.Audit, log)

	router.GET("/health", healthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		sessions := v1.Group("/session")
		{
			sessions.GET("", sessionHandler.GetSession)
			sessions.PUT("", sessionHandler.PutSession)
			sessions.DELETE("", sessionHandler.DeleteSession)
		}

		blogHandler.Register(v1.Group("/" + models.KindBlog.Plural()))
		videoHandler.Register(v1.Group("/" + models.KindVideo.Plural()))

		v1.GET("/moderation/events", eventHandler.ListEvents)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		database := "ok"
		if db != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
				database = err.Error()
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"database":  database,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "content-lifecycle-console",
		})
	}
}

// respondError writes err with the HTTP status matching its kind
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	body := gin.H{
		"error": apperr.MessageOf(err),
		"kind":  kind,
	}
	var e *apperr.Error
	if errors.As(err, &e) && len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.JSON(kind.HTTPStatus(), body)
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
