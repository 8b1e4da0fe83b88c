package server

import (
	"net/http"

	"chatapi/internal/config"
	"chatapi/internal/middleware"
	"chatapi/internal/modules/auth"
	"chatapi/internal/modules/message"
	"chatapi/internal/pkg/jwt"
	"chatapi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "0xC Chat API"
	serviceVersion = "1.0.0"
)

// App holds the wired services behind the HTTP engine.
type App struct {
	Engine   *gin.Engine
	Hub      *message.Hub
	Auth     *auth.Service
	Messages *message.Service
	Tokens   *jwt.Service
}

func New(cfg *config.Config, stores *Stores) *App {
	tokens := jwt.New(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshLead)
	hub := message.NewHub()

	authService := auth.NewService(stores.Users, stores.RefreshTokens, tokens, cfg.RefreshTokenTTL)
	messageService := message.NewService(stores.Messages, stores.Users, cfg.MaxMessageLength).WithNotifier(hub)

	authHandler := auth.NewHandler(authService, cfg.RegisterEnabled)
	messageHandler := message.NewHandler(messageService, hub)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		middleware.CORS(cfg.CORSOrigins),
	)
	if cfg.RateLimitEnabled {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit)))
	}

	r.GET("/", index)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Resource not found")
	})

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.APIKey(cfg.SecretKeyEnabled, cfg.SecretKey))
	{
		authHandler.RegisterPublicRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(tokens, stores.Users))
		{
			authHandler.RegisterProtectedRoutes(protected)
			messageHandler.RegisterProtectedRoutes(protected)
		}
	}

	return &App{
		Engine:   r,
		Hub:      hub,
		Auth:     authService,
		Messages: messageService,
		Tokens:   tokens,
	}
}

func index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        serviceName,
		"version":     serviceVersion,
		"description": "A simple chat API built with Go",
	})
}
