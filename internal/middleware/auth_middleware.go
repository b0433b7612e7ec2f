package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/logger"
)

const UserIDContextKey = "userID"

// TokenParser resolves a bearer token to the user it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, *apperrors.APIError)
}

// Auth requires a valid bearer token. The scheme is matched case-insensitively.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			writeError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		userID, apiErr := parser.ParseToken(token)
		if apiErr != nil {
			logger.Debug("rejected bearer token", "path", c.FullPath(), "code", apiErr.Code)
			writeError(c, apiErr)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID returns the authenticated user, or "" outside an Auth-guarded route.
func UserID(c *gin.Context) string {
	userID, _ := c.Get(UserIDContextKey)
	value, _ := userID.(string)
	return value
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error": gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}
