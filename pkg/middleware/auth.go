package middleware

import (
	"strings"

	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/jwt"
	"adam-store/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth for downstream handlers
const (
	ClaimsKey    = "claims"
	UserIDKey    = "userId"
	UserEmailKey = "userEmail"
	UserRoleKey  = "userRole"
)

// JWTAuth checks that the request carries a valid bearer token and adds
// the claims to the context. Requests without a valid token never reach
// business handlers.
func JWTAuth(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authorization header is required"))
			c.Abort()
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Warn("invalid bearer token", "error", err.Error())
			c.Error(errors.NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole returns a middleware that requires the authenticated user
// to have a specific role. Must run after JWTAuth.
func RequireRole(role jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get(ClaimsKey)
		if !exists {
			c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
			c.Abort()
			return
		}

		jwtClaims, ok := claims.(*jwt.Claims)
		if !ok {
			c.Error(errors.NewInternalServerError("INVALID_CLAIMS", "Invalid JWT claims format"))
			c.Abort()
			return
		}

		if !jwtClaims.HasRole(role) {
			c.Error(errors.NewForbiddenError("FORBIDDEN", "Your role does not allow this operation"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// CallerEmail returns the authenticated principal's email from the Gin
// context. The chat layer uses it as the membership key.
func CallerEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok && s != ""
}
