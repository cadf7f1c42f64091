package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/sv1nxmmvt/fincontrol/internal/entity/user"
)

const identityKey = "identity"

// authRequired rejects requests without a valid session cookie before they
// reach any ledger operation, and stashes the caller's identity for
// handlers to pick up.
func authRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		ident, err := parseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

func identityFromContext(c *gin.Context) user.Identity {
	ident, _ := c.MustGet(identityKey).(user.Identity)
	return ident
}

// observeRequest wraps each request in a span and records its duration.
func observeRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(
			c.Request.Context(), "handleRequest")
		defer span.Finish()
		span.SetTag("path", c.FullPath())
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		observeResponse(elapsed, status)
		if status >= http.StatusInternalServerError {
			ext.Error.Set(span, true)
		}
	}
}
