package handler

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/metrics"
	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/ratelimit"
	"github.com/meddispatch/backend/internal/service"
)

const authUserKey = "auth_user"

// RateLimitMiddleware is the first pipeline stage: a rejected request is
// answered before validation, authentication, or any persistence work runs.
func RateLimitMiddleware(limiter *ratelimit.Limiter, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Check(c.ClientIP(), class)
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(retryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:     "rate_limited",
				Message:   "too many requests, slow down",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		c.Next()
	}
}

// SessionMiddleware authenticates the auth_session cookie and re-resolves the
// user against the database. A cookie for a deleted user is answered with 401
// and a cookie-deletion instruction.
func SessionMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := authService.CookieConfig()

		token, err := c.Cookie(cfg.Name)
		if err != nil || token == "" {
			respondError(c, apperr.Authentication("authentication required"))
			return
		}

		session, err := authService.ParseSession(token)
		if err != nil {
			clearSessionCookie(c, cfg)
			respondError(c, err)
			return
		}

		user, err := authService.ResolveUser(c.Request.Context(), session)
		if err != nil {
			if apperr.From(err).Kind == apperr.KindAuthentication {
				clearSessionCookie(c, cfg)
			}
			respondError(c, err)
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// RequireUserTypes gates a route group to the listed roles.
func RequireUserTypes(types ...model.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil {
			respondError(c, apperr.Authentication("authentication required"))
			return
		}
		for _, t := range types {
			if user.UserType == t {
				c.Next()
				return
			}
		}
		respondError(c, apperr.Authorization("insufficient permissions"))
	}
}

func RequireDriver() gin.HandlerFunc  { return RequireUserTypes(model.UserTypeDriver) }
func RequireShipper() gin.HandlerFunc { return RequireUserTypes(model.UserTypeShipper) }
func RequireAdmin() gin.HandlerFunc   { return RequireUserTypes(model.UserTypeAdmin) }

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

// CronAuthMiddleware guards scheduled-job endpoints with the shared bearer
// secret used by the external scheduler.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			respondError(c, apperr.Authentication("cron endpoint disabled"))
			return
		}
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if !strings.HasPrefix(header, "Bearer ") ||
			subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			respondError(c, apperr.Authentication("unauthorized"))
			return
		}
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("clientIp", c.ClientIP()).
			Msg("request")
	}
}

// MetricsMiddleware records request counts and latency by route pattern.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncInFlight()
		defer m.DecInFlight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
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
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Allow-Headers", "Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func clearSessionCookie(c *gin.Context, cfg service.CookieConfig) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func setSessionCookie(c *gin.Context, cfg service.CookieConfig, token string) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, token, cfg.MaxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}
