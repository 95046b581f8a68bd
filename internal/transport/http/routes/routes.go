package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/config"
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/telemetry"
	"github.com/IsbatBInHossain/bookstore-cms/internal/transport/http/handlers"
	"github.com/IsbatBInHossain/bookstore-cms/internal/transport/http/middleware"
	"github.com/IsbatBInHossain/bookstore-cms/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth  *usecase.AuthService
	Users *usecase.UserService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Telemetry   *telemetry.Provider
	DB          handlers.Pinger
	Cache       handlers.HealthChecker
	Services    ServiceSet
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Telemetry != nil {
		r.Use(middleware.Metrics(deps.Telemetry))
	}

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerLimit, loginLimit, refreshLimit := buildAuthLimits(deps)

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(api.Group("/auth"), registerLimit, loginLimit, refreshLimit)

		userHandler := handlers.NewUserHandler(deps.Services.Auth, deps.Services.Users)
		userHandler.RegisterRoutes(api.Group("/users"))
	}

	return r
}

func buildAuthLimits(deps Dependencies) (gin.HandlerFunc, gin.HandlerFunc, gin.HandlerFunc) {
	if deps.RateLimiter == nil {
		return nil, nil, nil
	}

	cfg := deps.Config.RateLimit

	register := deps.RateLimiter.Limit(middleware.RateLimitRule{
		Name:   "register",
		Limit:  cfg.RegisterMaxAttempts,
		Window: cfg.WindowDuration,
	})
	login := deps.RateLimiter.Limit(middleware.RateLimitRule{
		Name:   "login",
		Limit:  cfg.LoginMaxAttempts,
		Window: cfg.WindowDuration,
	})
	refresh := deps.RateLimiter.Limit(middleware.RateLimitRule{
		Name:   "refresh",
		Limit:  cfg.RefreshMaxAttempts,
		Window: cfg.WindowDuration,
	})

	return register, login, refresh
}
