// Package httpapi exposes the signup/login/refresh/logout operations over
// HTTP, manages the refresh-token cookie, and delegates business logic to
// the auth service.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/ratelimit"
	"github.com/dmitrijs2005/authgate/internal/server/services"
)

type Server struct {
	cfg     *config.Config
	logger  logging.Logger
	auth    *services.AuthService
	issuer  *auth.Issuer
	counter ratelimit.CounterStore
}

// NewServer wires the HTTP surface. counter may be nil when rate limiting is
// disabled (the test environment).
func NewServer(cfg *config.Config, logger logging.Logger, authService *services.AuthService, issuer *auth.Issuer, counter ratelimit.CounterStore) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger.With("module", "httpapi"),
		auth:    authService,
		issuer:  issuer,
		counter: counter,
	}
}

// Router builds the gin engine with the middleware chain and route table.
func (s *Server) Router() *gin.Engine {
	switch s.cfg.Env {
	case config.EnvProduction:
		gin.SetMode(gin.ReleaseMode)
	case config.EnvTest:
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())
	if s.cfg.Env != config.EnvTest {
		router.Use(gin.Logger())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{s.cfg.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 10 * time.Minute
	router.Use(cors.New(corsConfig))

	global, authOnly := s.limiters()
	if global != nil {
		router.Use(global.Middleware())
	}

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		if authOnly != nil {
			authRoutes.Use(authOnly.Middleware())
		}
		{
			authRoutes.POST("/signup", s.handleSignup)
			authRoutes.POST("/login", s.handleLogin)
			authRoutes.POST("/refresh", s.handleRefresh)
			authRoutes.POST("/logout", s.handleLogout)
		}

		api.GET("/me", s.requireAuth(), s.handleMe)
	}

	return router
}

// limiters returns the environment's rate-limit gates. Production is strict,
// development relaxed, test disabled.
func (s *Server) limiters() (global, authOnly *ratelimit.Limiter) {
	if s.counter == nil || s.cfg.Env == config.EnvTest {
		return nil, nil
	}

	if s.cfg.Env == config.EnvProduction {
		global = ratelimit.NewLimiter(s.counter, s.logger, 100, 15*time.Minute)
		authOnly = ratelimit.NewLimiter(s.counter, s.logger, 5, 15*time.Minute)
		return global, authOnly
	}

	global = ratelimit.NewLimiter(s.counter, s.logger, 1000, time.Minute)
	authOnly = ratelimit.NewLimiter(s.counter, s.logger, 50, time.Minute)
	return global, authOnly
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       s.cfg.Env,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
