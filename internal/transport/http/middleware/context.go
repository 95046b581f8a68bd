package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
)

const (
	// RequestIDHeader is the HTTP header carrying the request identifier.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key for the request identifier.
	RequestIDKey = "request_id"
	// CurrentUserKey is the gin context key for the authenticated user.
	CurrentUserKey = "current_user"
)

// RequestID assigns an identifier to each request, honoring one supplied by
// an upstream proxy, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request identifier from the context.
func GetRequestID(c *gin.Context) string {
	if value, exists := c.Get(RequestIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(c *gin.Context, user *domain.User) {
	c.Set(CurrentUserKey, user)
}

// GetCurrentUser retrieves the authenticated user placed by RequireAuth.
func GetCurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
