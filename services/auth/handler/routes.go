package handler

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/middleware"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth/handler/http"
)

// Handler coordinates the HTTP handlers of the auth BFF
type Handler struct {
	authHandler *http.AuthHandler
	redisClient *redis.Client
	cfg         *models.Config
}

// NewHandler creates and initializes all handlers
func NewHandler(
	authHandler *http.AuthHandler,
	redisClient *redis.Client,
	cfg *models.Config,
) *Handler {
	return &Handler{
		authHandler: authHandler,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

// RegisterRoutes registers the /auth routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authGroup := e.Group("/auth", http.VisitorMiddleware(h.cfg.Flow.VisitorTTL))

	authGroup.GET("/flow", h.authHandler.GetFlow)
	authGroup.GET("/session", h.authHandler.GetSession)

	// Submissions are rate limited per visitor
	var limit []echo.MiddlewareFunc
	if h.redisClient != nil {
		limit = append(limit, middleware.AuthRateLimiter(
			h.cfg.RateLimit.Requests,
			time.Duration(h.cfg.RateLimit.Period)*time.Second,
			h.redisClient,
		))
	}
	authGroup.POST("/signin", h.authHandler.SignIn, limit...)
	authGroup.POST("/signup", h.authHandler.SignUp, limit...)
	authGroup.POST("/google", h.authHandler.GoogleSignIn, limit...)
	authGroup.POST("/otp/verify", h.authHandler.VerifyOTP, limit...)
	authGroup.POST("/otp/resend", h.authHandler.ResendOTP, limit...)
	authGroup.POST("/otp/back", h.authHandler.BackToLogin, limit...)
	authGroup.POST("/logout", h.authHandler.Logout, limit...)
}
