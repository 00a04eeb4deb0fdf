package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys for values shared between middleware and handlers.
const (
	ctxKeyRequestID = "request_id"
	ctxKeyUserID    = "user_id"
)

// requestID tags every request with a correlation identifier, exposed to the
// client via X-Request-Id and attached to 500 responses and error logs.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxKeyRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// requireAuth verifies the Authorization bearer token against the access
// secret and stores the subject in the request context. Every failure mode
// collapses into the same generic 401.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		claims, err := s.issuer.VerifyAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		c.Set(ctxKeyUserID, claims.Subject)
		c.Next()
	}
}
