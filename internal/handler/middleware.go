package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fotowand/backend/internal/model"
	"github.com/fotowand/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	permissionKey = "permission"
	userIDKey     = "user_id"

	messageTooManyRequests = "TOO_MANY_REQUESTS"
)

// AccessChecker is the part of the auth service the permission gate needs.
type AccessChecker interface {
	VerifyAccessToken(accessToken string) (int64, error)
	GetUserPermissions(ctx context.Context, userID int64) (model.Permission, error)
}

// PermissionMiddleware attaches the caller's permission to the request. A
// request without a bearer token passes through with permission false.
func PermissionMiddleware(checker AccessChecker, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		c.Set(permissionKey, false)
		c.Set(userIDKey, int64(0))

		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		accessToken := bearerToken(c)
		if accessToken == "" {
			c.Next()
			return
		}

		userID, err := checker.VerifyAccessToken(accessToken)
		if err != nil {
			message := service.ErrAccessTokenInvalid.Error()
			if errors.Is(err, service.ErrAccessTokenExpired) {
				message = service.ErrAccessTokenExpired.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{Message: message})
			return
		}

		perm, err := checker.GetUserPermissions(c.Request.Context(), userID)
		if err != nil {
			logger.Error("resolve permission", zap.Int64("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{Message: messageGeneralError})
			return
		}

		c.Set(userIDKey, userID)
		c.Set(permissionKey, perm.Permission)
		c.Next()
	}
}

func GetPermission(c *gin.Context) bool {
	return c.GetBool(permissionKey)
}

func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// bearerToken returns "" unless the header has the Bearer scheme.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// Recovery turns a panic into a GENERAL_ERROR response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{Message: messageGeneralError})
	})
}

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepSize = 1024
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter returns nil when requestsPerMinute is not positive.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:   requestsPerMinute,
		now:     time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= limiterSweepSize {
			l.sweepLocked(now)
		}
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.clients, key)
		}
	}
}

// Middleware is a no-op on a nil limiter.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.Response{Message: messageTooManyRequests})
			return
		}
		c.Next()
	}
}
