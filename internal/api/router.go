package api

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/web"
	"github.com/personal-blog-api/pkg/logger"
	"github.com/rs/zerolog"
)

// DBStatus is the slice of the database the operational endpoints report on
type DBStatus interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// NewRouter creates and configures the Gin router. db may be nil, in which
// case /health reports only the process. The returned stop function ends
// the router's background work and must be called once it stops serving.
func NewRouter(services *service.Services, cfg *config.Config, db DBStatus, log zerolog.Logger) (*gin.Engine, func()) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	blogHandler := NewBlogHandler(services, log)
	exportHandler := NewExportHandler(services, log)
	authHandler := NewAuthHandler(services, log)
	newsletterHandler := NewNewsletterHandler(services, log)
	pageHandler := NewPageHandler(services, web.MustLoad(), log)

	loginLimiter := NewRateLimiter(cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow)
	requireAuth := authMiddleware(services.Auth)

	router.GET("/health", healthCheck(db))
	router.GET("/metrics", metricsHandler(services, db))

	api := router.Group("/api")
	{
		blogs := api.Group("/blogs")
		{
			blogs.GET("", blogHandler.List)
			blogs.GET("/featured", blogHandler.Featured)
			blogs.GET("/latest/:count", blogHandler.Latest)
			blogs.GET("/export", requireAuth, exportHandler.StreamExport)
			blogs.GET("/:slug", blogHandler.Get)
			blogs.POST("", requireAuth, blogHandler.Create)
			blogs.PUT("/:slug", requireAuth, blogHandler.Update)
			blogs.DELETE("/:id", requireAuth, blogHandler.Delete)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", loginLimiter.Limit(), authHandler.Login)
			authGroup.GET("/me", requireAuth, authHandler.Me)
			authGroup.POST("/setup", authHandler.Setup)
		}

		api.POST("/newsletter", newsletterHandler.Subscribe)
	}

	router.GET("/", pageHandler.Home)
	router.GET("/blog", pageHandler.List)
	router.GET("/blog/:slug", pageHandler.Detail)
	router.GET("/newsletter", pageHandler.Newsletter)
	router.POST("/newsletter", pageHandler.Subscribe)
	router.GET("/static/article.css", pageHandler.Stylesheet)

	return router, loginLimiter.Close
}

// healthCheck returns the health status
func healthCheck(db DBStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		body := gin.H{
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		}

		if db != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
				body["database"] = err.Error()
			} else {
				body["database"] = "ok"
			}
		}

		body["status"] = status
		c.JSON(code, body)
	}
}

// metricsHandler returns content counts and pool statistics
func metricsHandler(services *service.Services, db DBStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		posts, _ := services.Posts.Count(ctx)
		subscribers, _ := services.Newsletter.Count(ctx)

		body := gin.H{
			"content": gin.H{
				"posts":       posts,
				"subscribers": subscribers,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if db != nil {
			stats := db.Stats()
			body["pool"] = gin.H{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"wait_count":       stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"message": service.MsgServerError,
				})
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

// corsMiddleware handles CORS for the configured origins; "*" allows any
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowOrigin := matchOrigin(allowed, origin); allowOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			if allowOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func matchOrigin(allowed []string, origin string) string {
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(a, origin) {
			return origin
		}
	}
	return ""
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
