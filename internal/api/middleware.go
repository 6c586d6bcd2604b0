package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"smartorder/pkg/logger"
)

// RequestLogger tags every request with a ULID and logs method, status and
// latency through zap.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := ulid.Make().String()
		c.Header("X-Request-Id", reqID)

		c.Next()

		log.Infow("http request",
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// SessionRequired rejects requests without the session cookie. The cookie is
// only checked for presence: real session validation belongs to the platform
// backend, this server just reproduces its 401 contract.
func SessionRequired(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(cookieName); err != nil || v == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"mensaje": "sesión expirada"})
			return
		}
		c.Next()
	}
}

// CSRFGuard enforces the anti-forgery echo on state-changing methods: the
// X-CSRF-Token header must match the csrf cookie.
func CSRFGuard(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		cookie, err := c.Cookie(cookieName)
		header := c.GetHeader("X-CSRF-Token")
		if err != nil || cookie == "" || header == "" || cookie != header {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "token anti-forgery inválido"})
			return
		}
		c.Next()
	}
}
