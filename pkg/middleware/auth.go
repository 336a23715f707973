package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-idgen/pkg/jwt"
	"github.com/weiawesome/wes-idgen/pkg/response"
)

const (
	SubjectKey    = "subject"
	RolesKey      = "roles"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates bearer tokens locally with a jwt.Manager.
type AuthMiddleware struct {
	tokens *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireRole returns a Gin middleware that admits requests whose bearer
// token is valid and carries role.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Unauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "token has expired"
			}
			response.Unauthorized(c, msg)
			return
		}

		if !claims.HasRole(role) {
			response.Forbidden(c, "missing role "+role)
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(RolesKey, claims.Roles)

		c.Next()
	}
}

// GetSubject extracts the token subject from Gin context.
func GetSubject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}
