package handler

import (
	"github.com/fotowand/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Auth           *service.AuthService
	Books          *service.BookService
	Logger         *zap.Logger
	AllowedOrigins []string
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(Recovery(logger), RequestLogger(logger), CORSMiddleware(cfg.AllowedOrigins, true))

	router.GET("/ping", Ping)
	router.GET("/", Root)
	router.GET("/openapi.json", OpenAPIDoc)

	authHandler := NewAuthHandler(cfg.Auth, logger)
	bookHandler := NewBookHandler(cfg.Books, logger)
	limited := NewRateLimiter(cfg.RateLimit).Middleware()
	permission := PermissionMiddleware(cfg.Auth, logger)

	v1 := router.Group("/api/v1")
	v1.GET("", APIBanner)

	auth := v1.Group("/auth")
	auth.GET("", authHandler.GetCurrentUser)
	auth.POST("/token", limited, authHandler.Token)
	auth.POST("/login", limited, authHandler.Login)
	auth.PUT("/changePassword", limited, authHandler.ChangePassword)
	auth.POST("/createAccount", limited, authHandler.CreateAccount)
	auth.GET("/logout", authHandler.Logout)
	auth.GET("/permission", permission, authHandler.Permission)

	v1.GET("/book", permission, bookHandler.ListBooks)

	return router
}
