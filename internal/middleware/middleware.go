package middleware

import (
	"strings"

	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/response"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// Auth validates the bearer token and stores its claims in the request context.
func (m Middleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.l.Warnf(ctx, "Missing or malformed Authorization header | Path: %s", c.Request.URL.Path)
			response.Unauthorized(c)
			return
		}

		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if tokenString == "" {
			m.l.Warnf(ctx, "Empty token in Authorization header | Path: %s", c.Request.URL.Path)
			response.Unauthorized(c)
			return
		}

		claims, err := m.jwtManager.Verify(tokenString)
		if err != nil {
			m.l.Warnf(ctx, "Token verification failed: %v | Path: %s", err, c.Request.URL.Path)
			response.Unauthorized(c)
			return
		}

		c.Request = c.Request.WithContext(jwt.SetClaimsToContext(ctx, claims))
		c.Next()
	}
}

// RequireAdmin rejects tokens without the admin role. It must run after Auth.
func (m Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := jwt.GetClaimsFromContext(c.Request.Context())
		if !ok || !claims.IsAdmin() {
			m.l.Warnf(c.Request.Context(), "Admin role required | Subject: %s | Path: %s", claims.Subject, c.Request.URL.Path)
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// RateLimit throttles each token subject, or the client IP before Auth ran.
func (m Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil {
			c.Next()
			return
		}
		key := c.ClientIP()
		if claims, ok := jwt.GetClaimsFromContext(c.Request.Context()); ok && claims.Subject != "" {
			key = "sub:" + claims.Subject
		}
		if !m.limiter.Allow(key) {
			m.l.Warnf(c.Request.Context(), "Rate limit exceeded | Key: %s | Path: %s", key, c.Request.URL.Path)
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
