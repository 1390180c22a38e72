package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/metrics"
	"careermate/internal/service"
)

// HealthChecker reporta si las dependencias del servicio responden.
type HealthChecker func(ctx context.Context) error

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	m *metrics.Metrics,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	careerH *CareerHandler,
	subH *SubscriptionHandler,
	reviewH *ReviewHandler,
	health HealthChecker,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	// Middlewares basicos: logging, recovery, metricas y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	if m != nil {
		r.Use(metricsMiddleware(m))
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.Use(jsonContentTypeMiddleware())

	r.GET("/healthz", healthHandler(logger, health))

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/oauth", userH.OAuthLogin)
	auth.POST("/password/forgot", userH.ForgotPassword)
	auth.POST("/password/reset", userH.ResetPassword)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	r.POST("/users", userH.CreateUser)

	careers := r.Group("/careers")
	careers.GET("", careerH.ListCareers)
	careers.GET("/:id", careerH.GetCareer)
	careers.GET("/:id/reviews", OptionalJWTAuth(jwtSvc), reviewH.List)

	protected := r.Group("", JWTAuthMiddleware(jwtSvc))
	protected.GET("/users/me", userH.Me)

	test := protected.Group("/career-test")
	test.GET("/questions", careerH.Questions)
	test.POST("/submit", careerH.Submit)
	test.GET("/history", careerH.History)
	test.GET("/results/:id/report", careerH.DownloadReport)

	protected.POST("/careers/:id/reviews", reviewH.Create)
	protected.POST("/reviews/:id/like", reviewH.ToggleLike)
	protected.DELETE("/reviews/:id", reviewH.Delete)

	subs := protected.Group("/subscriptions")
	subs.GET("", subH.List)
	subs.POST("/:feature", subH.Subscribe)
	subs.DELETE("/:feature", subH.Cancel)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware cuenta requests por ruta registrada, no por path, para acotar la cardinalidad.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// healthHandler maneja GET /healthz.
func healthHandler(logger *zap.Logger, health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
