package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/service"
)

const serviceName = "personal-website-api"

// HealthChecker reports whether the database is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, health HealthChecker, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	m := newMetrics()
	httpLog := log.With().Str("component", "http").Logger()

	// Middleware
	router.Use(recoveryMiddleware(httpLog))
	router.Use(loggingMiddleware(httpLog))
	router.Use(m.middleware())
	router.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(timeoutMiddleware(cfg.Server.RequestTimeout))

	// Rate limiters
	maxClients := cfg.RateLimit.MaxTrackedClient
	loginLimiter := newIPRateLimiter("login", cfg.RateLimit.LoginPerHour, time.Hour, "1 hour", maxClients, m, httpLog)
	refreshLimiter := newIPRateLimiter("refresh", cfg.RateLimit.RefreshPerHour, time.Hour, "1 hour", maxClients, m, httpLog)
	publicLimiter := newIPRateLimiter("public", cfg.RateLimit.PublicPerMinute, time.Minute, "1 minute", maxClients, m, httpLog)

	// Handlers
	authHandler := NewAuthHandler(services, m, log)
	blogHandler := NewBlogHandler(services, log)

	router.GET("/", welcome)
	router.GET("/health", healthCheck(health))
	router.GET("/metrics", m.handler())

	api := router.Group("/api")
	{
		adminAuth := api.Group("/admin/auth")
		{
			adminAuth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
			adminAuth.POST("/refresh", refreshLimiter.Middleware(), authHandler.Refresh)
			adminAuth.GET("/me", authHandler.Me)
		}

		public := api.Group("", publicLimiter.Middleware())
		{
			public.GET("/blogs", blogHandler.List)
			public.GET("/blogs/:slug", blogHandler.Get)
			public.GET("/tags", blogHandler.Tags)
		}
	}

	return router
}

func welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Personal Website API"})
}

// healthCheck returns the health status, 503 when the database is down
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, dbStatus, code := "healthy", "up", http.StatusOK
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				status, dbStatus, code = "unhealthy", "down", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   serviceName,
			"database":  dbStatus,
		})
	}
}
