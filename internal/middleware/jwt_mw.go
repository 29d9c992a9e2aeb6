package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"toolhub/internal/model"
	"toolhub/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey = "authUser"
)

// UnauthorizedMessage is the single body used for every rejected token, so a
// caller cannot tell a missing header from a forged or expired token.
const UnauthorizedMessage = "Invalid or expired token."

// JWTAuthMiddleware creates a middleware for JWT authentication.
// The verified claims are the only identity source for downstream handlers.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			log.DebugContext(c.Request.Context(), "authorization header rejected", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": UnauthorizedMessage})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			log.DebugContext(c.Request.Context(), "token validation failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": UnauthorizedMessage})
			return
		}

		c.Set(AuthUserKey, claims.User)
		c.Next()
	}
}

// AuthUser returns the identity stored by JWTAuthMiddleware.
func AuthUser(c *gin.Context) (model.SessionUser, bool) {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return model.SessionUser{}, false
	}
	user, ok := val.(model.SessionUser)
	return user, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
