package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"linkly/internal/jwt"
	"linkly/internal/middleware"
)

// RateLimiters are the per-IP token buckets applied to each route group.
type RateLimiters struct {
	General  *middleware.RateLimiter
	Auth     *middleware.RateLimiter
	Shorten  *middleware.RateLimiter
	Redirect *middleware.RateLimiter
}

// Router wires controllers to routes
type Router struct {
	Shortener  *ShortenerController
	Auth       *AuthController
	Analytics  *AnalyticsController
	QRCode     *QRCodeController
	JWT        *jwt.JWTService
	Limiters   RateLimiters
	Logger     *zap.Logger
	HealthFunc func() map[string]string // optional dependency status for /health

	// TrustedProxies may set the client address through X-Forwarded-For. With none,
	// forwarding headers are ignored.
	TrustedProxies []string
}

// Engine builds the gin engine with every route registered
func (r *Router) Engine() (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(r.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.StructuredLogging(r.Logger))
	router.Use(middleware.PrometheusMetrics())

	// Health check and metrics (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if r.HealthFunc != nil {
			for k, v := range r.HealthFunc() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Redirect endpoint with rate limiting
	router.GET("/:shortCode", r.Limiters.Redirect.LimitMiddleware(), r.Shortener.RedirectToURL)

	api := router.Group("/api/v1")
	api.Use(r.Limiters.General.LimitMiddleware())
	{
		auth := api.Group("/auth")
		auth.Use(r.Limiters.Auth.LimitMiddleware())
		{
			auth.POST("/register", r.Auth.Register)
			auth.POST("/login", r.Auth.Login)
			auth.GET("/logout", r.Auth.Logout)
			auth.GET("/me", middleware.AuthMiddleware(r.JWT), r.Auth.Me)
		}

		// Anonymous creation is allowed; a valid token attaches the URL to its owner
		api.POST("/shorten", r.Limiters.Shorten.LimitMiddleware(), middleware.OptionalAuth(r.JWT), r.Shortener.CreateShortURL)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(r.JWT))
		{
			protected.GET("/urls", r.Shortener.GetUserURLs)
			protected.GET("/analytics", r.Analytics.GetDashboard)
			protected.GET("/analytics/url/:urlId", r.Analytics.GetURLAnalytics)
		}

		api.GET("/redirect/:shortCode", r.Limiters.Redirect.LimitMiddleware(), r.Shortener.GetOriginalURLPublic)
		api.GET("/qrcode/:shortCode", r.QRCode.GenerateQRCode)
	}

	return router, nil
}
