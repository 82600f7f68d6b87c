package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
)

// ContextKeyUser is the gin context key holding *entities.User.
const ContextKeyUser = "auth_user"

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// Authenticate resolves an optional bearer token. Requests without a valid
// token continue anonymously; RequireAuth and RequireRole decide whether
// that is acceptable. A lookup failure answers 500 so clients keep a token
// that may still be good.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user, err := m.service.ValidateToken(ctx, token)
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
			logger.For(ctx).WithError(err).Debug("bearer token rejected")
			c.Next()
			return
		case err != nil:
			logger.For(ctx).WithError(err).Error("failed to resolve bearer token")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to authenticate",
			})
			return
		}

		c.Set(ContextKeyUser, user)
		c.Request = c.Request.WithContext(WithUser(ctx, user))
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects anonymous requests with 401.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and users outside roles
// with 403.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	roleSet := make(map[entities.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		if !roleSet[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the context, nil when
// anonymous.
func GetUser(c *gin.Context) *entities.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		if user, ok := u.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID is GetUser(c).ID or "".
func GetUserID(c *gin.Context) string {
	if user := GetUser(c); user != nil {
		return user.ID
	}
	return ""
}
